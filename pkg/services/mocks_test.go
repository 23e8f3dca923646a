package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/repositories"
)

// In-memory repository fakes. Each fake stores by ID and lets a test
// override individual methods through err hooks where needed.

type mockUploadRepo struct {
	uploads    map[uuid.UUID]*models.Upload
	createErr  error
	createHook func()
}

func newMockUploadRepo() *mockUploadRepo {
	return &mockUploadRepo{uploads: make(map[uuid.UUID]*models.Upload)}
}

var _ repositories.UploadRepository = (*mockUploadRepo)(nil)

func (m *mockUploadRepo) Create(ctx context.Context, upload *models.Upload) error {
	if m.createHook != nil {
		m.createHook()
	}
	if m.createErr != nil {
		return m.createErr
	}
	upload.ID = uuid.New()
	upload.CreatedAt = time.Now()
	m.uploads[upload.ID] = upload
	return nil
}

func (m *mockUploadRepo) GetByID(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error) {
	return m.uploads[uploadID], nil
}

func (m *mockUploadRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error) {
	var out []*models.Upload
	for _, u := range m.uploads {
		if u.OrgID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockMetricRowRepo struct {
	rows       map[uuid.UUID][]models.MetricRow
	rangeRows  []models.MetricRow
	replaceErr error
	rangeErr   error
	lastFrom   time.Time
	lastTo     time.Time
	lastDims   []string
}

func newMockMetricRowRepo() *mockMetricRowRepo {
	return &mockMetricRowRepo{rows: make(map[uuid.UUID][]models.MetricRow)}
}

var _ repositories.MetricRowRepository = (*mockMetricRowRepo)(nil)

func (m *mockMetricRowRepo) ReplaceForUpload(ctx context.Context, orgID, uploadID uuid.UUID, rows []models.MetricRow) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.rows[uploadID] = rows
	return nil
}

func (m *mockMetricRowRepo) GetByRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, dimensionFields []string) ([]models.MetricRow, error) {
	m.lastFrom, m.lastTo, m.lastDims = from, to, dimensionFields
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return m.rangeRows, nil
}

type mockEntityTypeRepo struct {
	types map[uuid.UUID]*models.EntityType
}

func newMockEntityTypeRepo() *mockEntityTypeRepo {
	return &mockEntityTypeRepo{types: make(map[uuid.UUID]*models.EntityType)}
}

var _ repositories.EntityTypeRepository = (*mockEntityTypeRepo)(nil)

func (m *mockEntityTypeRepo) Create(ctx context.Context, et *models.EntityType) error {
	if et.ID == uuid.Nil {
		et.ID = uuid.New()
	}
	m.types[et.ID] = et
	return nil
}

func (m *mockEntityTypeRepo) GetByID(ctx context.Context, typeID uuid.UUID) (*models.EntityType, error) {
	return m.types[typeID], nil
}

func (m *mockEntityTypeRepo) GetBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*models.EntityType, error) {
	for _, et := range m.types {
		if et.OrgID == orgID && et.Slug == slug {
			return et, nil
		}
	}
	return nil, nil
}

func (m *mockEntityTypeRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error) {
	var out []*models.EntityType
	for _, et := range m.types {
		if et.OrgID == orgID {
			out = append(out, et)
		}
	}
	return out, nil
}

func (m *mockEntityTypeRepo) Update(ctx context.Context, et *models.EntityType) error {
	m.types[et.ID] = et
	return nil
}

func (m *mockEntityTypeRepo) Delete(ctx context.Context, typeID uuid.UUID) error {
	delete(m.types, typeID)
	return nil
}

type mockEntityRepo struct {
	entities map[uuid.UUID]*models.Entity
	updates  int
}

func newMockEntityRepo() *mockEntityRepo {
	return &mockEntityRepo{entities: make(map[uuid.UUID]*models.Entity)}
}

var _ repositories.EntityRepository = (*mockEntityRepo)(nil)

func (m *mockEntityRepo) Create(ctx context.Context, entity *models.Entity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	m.entities[entity.ID] = entity
	return nil
}

func (m *mockEntityRepo) GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	return m.entities[entityID], nil
}

func (m *mockEntityRepo) GetByTypeAndName(ctx context.Context, typeID uuid.UUID, name string) (*models.Entity, error) {
	for _, e := range m.entities {
		if e.EntityTypeID == typeID && e.Name == name {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEntityRepo) ListByType(ctx context.Context, typeID uuid.UUID) ([]*models.Entity, error) {
	var out []*models.Entity
	for _, e := range m.entities {
		if e.EntityTypeID == typeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntityRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Entity, error) {
	var out []*models.Entity
	for _, e := range m.entities {
		if e.OrgID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntityRepo) Update(ctx context.Context, entity *models.Entity) error {
	m.entities[entity.ID] = entity
	m.updates++
	return nil
}

func (m *mockEntityRepo) Delete(ctx context.Context, entityID uuid.UUID) error {
	delete(m.entities, entityID)
	return nil
}

type mockRelationshipRepo struct {
	relTypes      map[uuid.UUID]*models.RelationshipType
	relationships map[uuid.UUID]*models.EntityRelationship
}

func newMockRelationshipRepo() *mockRelationshipRepo {
	return &mockRelationshipRepo{
		relTypes:      make(map[uuid.UUID]*models.RelationshipType),
		relationships: make(map[uuid.UUID]*models.EntityRelationship),
	}
}

var _ repositories.RelationshipRepository = (*mockRelationshipRepo)(nil)

func (m *mockRelationshipRepo) CreateType(ctx context.Context, rt *models.RelationshipType) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	m.relTypes[rt.ID] = rt
	return nil
}

func (m *mockRelationshipRepo) GetTypeByID(ctx context.Context, typeID uuid.UUID) (*models.RelationshipType, error) {
	return m.relTypes[typeID], nil
}

func (m *mockRelationshipRepo) GetTypeByName(ctx context.Context, fromTypeID, toTypeID uuid.UUID, name string) (*models.RelationshipType, error) {
	for _, rt := range m.relTypes {
		if rt.FromTypeID == fromTypeID && rt.ToTypeID == toTypeID && rt.Name == name {
			return rt, nil
		}
	}
	return nil, nil
}

func (m *mockRelationshipRepo) ListTypesByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error) {
	var out []*models.RelationshipType
	for _, rt := range m.relTypes {
		if rt.OrgID == orgID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *mockRelationshipRepo) DeleteType(ctx context.Context, typeID uuid.UUID) error {
	delete(m.relTypes, typeID)
	return nil
}

func (m *mockRelationshipRepo) CreateRelationship(ctx context.Context, rel *models.EntityRelationship) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	m.relationships[rel.ID] = rel
	return nil
}

func (m *mockRelationshipRepo) GetRelationshipByID(ctx context.Context, relID uuid.UUID) (*models.EntityRelationship, error) {
	return m.relationships[relID], nil
}

func (m *mockRelationshipRepo) ListRelationshipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityRelationship, error) {
	var out []*models.EntityRelationship
	for _, rel := range m.relationships {
		if rel.OrgID == orgID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *mockRelationshipRepo) ListRelationshipsByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.EntityRelationship, error) {
	var out []*models.EntityRelationship
	for _, rel := range m.relationships {
		if rel.FromEntityID == entityID || rel.ToEntityID == entityID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *mockRelationshipRepo) DeleteRelationship(ctx context.Context, relID uuid.UUID) error {
	delete(m.relationships, relID)
	return nil
}
