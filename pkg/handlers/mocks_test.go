package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/aetherhq/aether-engine/pkg/gap"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/services"
)

type mockImportService struct {
	suggestResult map[string]models.ColumnRole
	importResult  *services.ImportResult
	importErr     error
	lastOrgID     uuid.UUID
	lastRequest   services.ImportRequest
	uploads       map[uuid.UUID]*models.Upload
}

var _ services.ImportService = (*mockImportService)(nil)

func (m *mockImportService) Suggest(headers []string) map[string]models.ColumnRole {
	return m.suggestResult
}

func (m *mockImportService) Import(ctx context.Context, orgID uuid.UUID, req services.ImportRequest) (*services.ImportResult, error) {
	m.lastOrgID = orgID
	m.lastRequest = req
	return m.importResult, m.importErr
}

func (m *mockImportService) GetUpload(ctx context.Context, uploadID uuid.UUID) (*models.Upload, error) {
	return m.uploads[uploadID], nil
}

func (m *mockImportService) ListUploads(ctx context.Context, orgID uuid.UUID) ([]*models.Upload, error) {
	var out []*models.Upload
	for _, u := range m.uploads {
		out = append(out, u)
	}
	return out, nil
}

type mockGapService struct {
	result      *gap.Result
	err         error
	lastRequest gap.Request
}

var _ services.GapService = (*mockGapService)(nil)

func (m *mockGapService) Matrix(ctx context.Context, orgID uuid.UUID, req gap.Request) (*gap.Result, error) {
	m.lastRequest = req
	return m.result, m.err
}

type mockOntologyService struct {
	entityTypes   map[uuid.UUID]*models.EntityType
	entities      map[uuid.UUID]*models.Entity
	relTypes      map[uuid.UUID]*models.RelationshipType
	relationships map[uuid.UUID]*models.EntityRelationship
	createErr     error
}

func newMockOntologyService() *mockOntologyService {
	return &mockOntologyService{
		entityTypes:   make(map[uuid.UUID]*models.EntityType),
		entities:      make(map[uuid.UUID]*models.Entity),
		relTypes:      make(map[uuid.UUID]*models.RelationshipType),
		relationships: make(map[uuid.UUID]*models.EntityRelationship),
	}
}

var _ services.OntologyService = (*mockOntologyService)(nil)

func (m *mockOntologyService) CreateEntityType(ctx context.Context, orgID uuid.UUID, et *models.EntityType) error {
	if m.createErr != nil {
		return m.createErr
	}
	et.ID = uuid.New()
	et.OrgID = orgID
	if et.Slug == "" {
		et.Slug = models.SlugForName(et.Name)
	}
	m.entityTypes[et.ID] = et
	return nil
}

func (m *mockOntologyService) GetEntityType(ctx context.Context, id uuid.UUID) (*models.EntityType, error) {
	return m.entityTypes[id], nil
}

func (m *mockOntologyService) ListEntityTypes(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error) {
	var out []*models.EntityType
	for _, et := range m.entityTypes {
		out = append(out, et)
	}
	return out, nil
}

func (m *mockOntologyService) UpdateEntityType(ctx context.Context, et *models.EntityType) error {
	m.entityTypes[et.ID] = et
	return nil
}

func (m *mockOntologyService) DeleteEntityType(ctx context.Context, id uuid.UUID) error {
	delete(m.entityTypes, id)
	return nil
}

func (m *mockOntologyService) CreateEntity(ctx context.Context, orgID uuid.UUID, entity *models.Entity) error {
	if m.createErr != nil {
		return m.createErr
	}
	entity.ID = uuid.New()
	entity.OrgID = orgID
	m.entities[entity.ID] = entity
	return nil
}

func (m *mockOntologyService) GetEntity(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	return m.entities[id], nil
}

func (m *mockOntologyService) ListEntities(ctx context.Context, orgID uuid.UUID, typeID *uuid.UUID) ([]*models.Entity, error) {
	var out []*models.Entity
	for _, e := range m.entities {
		if typeID != nil && e.EntityTypeID != *typeID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockOntologyService) UpdateEntity(ctx context.Context, entity *models.Entity) error {
	m.entities[entity.ID] = entity
	return nil
}

func (m *mockOntologyService) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	delete(m.entities, id)
	return nil
}

func (m *mockOntologyService) CreateRelationshipType(ctx context.Context, orgID uuid.UUID, rt *models.RelationshipType) error {
	if m.createErr != nil {
		return m.createErr
	}
	rt.ID = uuid.New()
	rt.OrgID = orgID
	m.relTypes[rt.ID] = rt
	return nil
}

func (m *mockOntologyService) ListRelationshipTypes(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error) {
	var out []*models.RelationshipType
	for _, rt := range m.relTypes {
		out = append(out, rt)
	}
	return out, nil
}

func (m *mockOntologyService) DeleteRelationshipType(ctx context.Context, id uuid.UUID) error {
	delete(m.relTypes, id)
	return nil
}

func (m *mockOntologyService) CreateRelationship(ctx context.Context, orgID uuid.UUID, rel *models.EntityRelationship) error {
	if m.createErr != nil {
		return m.createErr
	}
	rel.ID = uuid.New()
	rel.OrgID = orgID
	m.relationships[rel.ID] = rel
	return nil
}

func (m *mockOntologyService) ListRelationships(ctx context.Context, orgID uuid.UUID, entityID *uuid.UUID) ([]*models.EntityRelationship, error) {
	var out []*models.EntityRelationship
	for _, rel := range m.relationships {
		if entityID != nil && rel.FromEntityID != *entityID && rel.ToEntityID != *entityID {
			continue
		}
		out = append(out, rel)
	}
	return out, nil
}

func (m *mockOntologyService) DeleteRelationship(ctx context.Context, id uuid.UUID) error {
	delete(m.relationships, id)
	return nil
}
