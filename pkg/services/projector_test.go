package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/models"
)

func newTestProjector(entityTypes *mockEntityTypeRepo, entities *mockEntityRepo, rels *mockRelationshipRepo) OntologyProjector {
	return NewOntologyProjector(entityTypes, entities, rels, zap.NewNop())
}

func seedEntityType(t *testing.T, repo *mockEntityTypeRepo, orgID uuid.UUID, name string, props ...models.EntityProperty) *models.EntityType {
	t.Helper()
	et := &models.EntityType{
		OrgID:      orgID,
		Name:       name,
		Slug:       models.SlugForName(name),
		Properties: props,
	}
	require.NoError(t, repo.Create(context.Background(), et))
	return et
}

func TestProject_CreatesEntitiesFromRows(t *testing.T) {
	orgID := uuid.New()
	entityTypes := newMockEntityTypeRepo()
	entities := newMockEntityRepo()
	rels := newMockRelationshipRepo()

	instructorType := seedEntityType(t, entityTypes, orgID, "Instructor",
		models.EntityProperty{Key: "email", Label: "Email", Type: models.PropertyEmail, Visible: true},
		models.EntityProperty{Key: "rate", Label: "Hourly Rate", Type: models.PropertyCurrency, Visible: true},
	)

	projector := newTestProjector(entityTypes, entities, rels)
	uploadID := uuid.New()

	rows := []map[string]string{
		{"Instructor": "Alice Smith", "Email": "alice@example.com", "Rate": "$45.00"},
		{"Instructor": "Bob Jones", "Email": "bob@example.com", "Rate": "50"},
	}
	cfg := ProjectionConfig{
		EntityTypeID: instructorType.ID,
		NameColumn:   "Instructor",
		ColumnToProperty: map[string]string{
			"Email": "email",
			"Rate":  "rate",
		},
	}

	result, err := projector.Project(context.Background(), orgID, uploadID, []string{"Instructor", "Email", "Rate"}, rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EntitiesCreated)
	assert.Equal(t, 0, result.EntitiesUpdated)

	alice, err := entities.GetByTypeAndName(context.Background(), instructorType.ID, "Alice Smith")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "alice@example.com", alice.Properties["email"].Text)
	assert.Equal(t, 45.0, alice.Properties["rate"].Number)
	require.NotNil(t, alice.SourceUploadID)
	assert.Equal(t, uploadID, *alice.SourceUploadID)
}

func TestProject_UpsertMergesExistingEntity(t *testing.T) {
	orgID := uuid.New()
	entityTypes := newMockEntityTypeRepo()
	entities := newMockEntityRepo()
	rels := newMockRelationshipRepo()

	instructorType := seedEntityType(t, entityTypes, orgID, "Instructor",
		models.EntityProperty{Key: "email", Label: "Email", Type: models.PropertyEmail, Visible: true},
		models.EntityProperty{Key: "rate", Label: "Hourly Rate", Type: models.PropertyCurrency, Visible: true},
	)

	existing := &models.Entity{
		OrgID:        orgID,
		EntityTypeID: instructorType.ID,
		Name:         "Alice Smith",
		Properties: map[string]models.PropertyValue{
			"email": {Kind: models.PropertyEmail, Text: "old@example.com"},
			"rate":  {Kind: models.PropertyCurrency, Number: 40},
		},
	}
	require.NoError(t, entities.Create(context.Background(), existing))

	projector := newTestProjector(entityTypes, entities, rels)

	// New upload carries a fresh email but a blank rate. The blank cell must
	// not clobber the stored rate.
	rows := []map[string]string{
		{"Instructor": "Alice Smith", "Email": "alice@new.example.com", "Rate": ""},
	}
	cfg := ProjectionConfig{
		EntityTypeID:     instructorType.ID,
		NameColumn:       "Instructor",
		ColumnToProperty: map[string]string{"Email": "email", "Rate": "rate"},
	}

	result, err := projector.Project(context.Background(), orgID, uuid.New(), []string{"Instructor", "Email", "Rate"}, rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, result.EntitiesCreated)
	assert.Equal(t, 1, result.EntitiesUpdated)
	assert.Len(t, entities.entities, 1)

	merged, err := entities.GetByTypeAndName(context.Background(), instructorType.ID, "Alice Smith")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", merged.Properties["email"].Text)
	assert.Equal(t, 40.0, merged.Properties["rate"].Number)
}

func TestProject_RelationshipResolution(t *testing.T) {
	orgID := uuid.New()
	entityTypes := newMockEntityTypeRepo()
	entities := newMockEntityRepo()
	rels := newMockRelationshipRepo()

	instructorType := seedEntityType(t, entityTypes, orgID, "Instructor")
	locationType := seedEntityType(t, entityTypes, orgID, "Location")

	downtown := &models.Entity{OrgID: orgID, EntityTypeID: locationType.ID, Name: "Downtown"}
	require.NoError(t, entities.Create(context.Background(), downtown))

	projector := newTestProjector(entityTypes, entities, rels)

	rows := []map[string]string{
		{"Instructor": "Alice Smith", "Location": "Downtown"},
		{"Instructor": "Bob Jones", "Location": "Uptown"}, // no such location
		{"Instructor": "Carol White", "Location": ""},
	}
	cfg := ProjectionConfig{
		EntityTypeID: instructorType.ID,
		NameColumn:   "Instructor",
		Relationships: []RelationshipColumn{
			{Header: "Location", TargetTypeID: locationType.ID, Name: "works at"},
		},
	}

	result, err := projector.Project(context.Background(), orgID, uuid.New(), []string{"Instructor", "Location"}, rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, result.EntitiesCreated)
	assert.Equal(t, 1, result.RelationshipsCreated)
	assert.Equal(t, 1, result.ResolutionMisses)

	// The relationship type was created lazily with the right endpoints.
	rt, err := rels.GetTypeByName(context.Background(), instructorType.ID, locationType.ID, "works at")
	require.NoError(t, err)
	require.NotNil(t, rt)

	alice, _ := entities.GetByTypeAndName(context.Background(), instructorType.ID, "Alice Smith")
	linked, err := rels.ListRelationshipsByEntity(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, downtown.ID, linked[0].ToEntityID)
}

func TestProject_ReimportIsIdempotent(t *testing.T) {
	orgID := uuid.New()
	entityTypes := newMockEntityTypeRepo()
	entities := newMockEntityRepo()
	rels := newMockRelationshipRepo()

	instructorType := seedEntityType(t, entityTypes, orgID, "Instructor")
	locationType := seedEntityType(t, entityTypes, orgID, "Location")
	require.NoError(t, entities.Create(context.Background(), &models.Entity{
		OrgID: orgID, EntityTypeID: locationType.ID, Name: "Downtown",
	}))

	projector := newTestProjector(entityTypes, entities, rels)

	rows := []map[string]string{{"Instructor": "Alice Smith", "Location": "Downtown"}}
	cfg := ProjectionConfig{
		EntityTypeID: instructorType.ID,
		NameColumn:   "Instructor",
		Relationships: []RelationshipColumn{
			{Header: "Location", TargetTypeID: locationType.ID, Name: "works at"},
		},
	}

	first, err := projector.Project(context.Background(), orgID, uuid.New(), []string{"Instructor", "Location"}, rows, cfg)
	require.NoError(t, err)
	second, err := projector.Project(context.Background(), orgID, uuid.New(), []string{"Instructor", "Location"}, rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, first.EntitiesCreated)
	assert.Equal(t, 1, first.RelationshipsCreated)
	assert.Equal(t, 1, second.EntitiesUpdated)
	assert.Equal(t, 0, second.RelationshipsCreated)
	assert.Len(t, rels.relationships, 1)
	assert.Len(t, rels.relTypes, 1)
}

func TestProject_SkipsBlankNamesAndBadProperties(t *testing.T) {
	orgID := uuid.New()
	entityTypes := newMockEntityTypeRepo()
	entities := newMockEntityRepo()
	rels := newMockRelationshipRepo()

	instructorType := seedEntityType(t, entityTypes, orgID, "Instructor",
		models.EntityProperty{Key: "rate", Label: "Rate", Type: models.PropertyCurrency, Visible: true},
	)

	projector := newTestProjector(entityTypes, entities, rels)

	rows := []map[string]string{
		{"Instructor": "   ", "Rate": "45"},
		{"Instructor": "Alice Smith", "Rate": "not a number"},
		{"Instructor": "Bob Jones", "Rate": "55", "Extra": "x"},
	}
	cfg := ProjectionConfig{
		EntityTypeID: instructorType.ID,
		NameColumn:   "Instructor",
		ColumnToProperty: map[string]string{
			"Rate":  "rate",
			"Extra": "no_such_property",
		},
	}

	result, err := projector.Project(context.Background(), orgID, uuid.New(), []string{"Instructor", "Rate", "Extra"}, rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsSkipped)
	assert.Equal(t, 2, result.EntitiesCreated)
	// One unparseable rate plus one unknown property key.
	assert.Equal(t, 2, result.PropertiesSkipped)

	alice, _ := entities.GetByTypeAndName(context.Background(), instructorType.ID, "Alice Smith")
	require.NotNil(t, alice)
	_, hasRate := alice.Properties["rate"]
	assert.False(t, hasRate)
}

func TestProject_UnknownEntityTypeFails(t *testing.T) {
	projector := newTestProjector(newMockEntityTypeRepo(), newMockEntityRepo(), newMockRelationshipRepo())

	_, err := projector.Project(context.Background(), uuid.New(), uuid.New(), nil, nil, ProjectionConfig{
		EntityTypeID: uuid.New(),
		NameColumn:   "Name",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
