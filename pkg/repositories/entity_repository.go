package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aetherhq/aether-engine/pkg/database"
	"github.com/aetherhq/aether-engine/pkg/models"
)

// EntityRepository provides data access for entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error)
	// GetByTypeAndName is the projector's upsert probe: entity names are the
	// join key between uploaded rows and existing entities.
	GetByTypeAndName(ctx context.Context, typeID uuid.UUID, name string) (*models.Entity, error)
	ListByType(ctx context.Context, typeID uuid.UUID) ([]*models.Entity, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Entity, error)
	Update(ctx context.Context, entity *models.Entity) error
	// Delete removes the entity; relationships referencing it from either end
	// go with it via ON DELETE CASCADE.
	Delete(ctx context.Context, entityID uuid.UUID) error
}

type entityRepository struct{}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository() EntityRepository {
	return &entityRepository{}
}

var _ EntityRepository = (*entityRepository)(nil)

func (r *entityRepository) Create(ctx context.Context, entity *models.Entity) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	propsJSON, err := models.PropertiesJSON(entity.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal entity properties: %w", err)
	}

	query := `
		INSERT INTO engine_entities (id, org_id, entity_type_id, name, properties, source_upload_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = scope.Conn.Exec(ctx, query,
		entity.ID, entity.OrgID, entity.EntityTypeID, entity.Name,
		propsJSON, entity.SourceUploadID, entity.CreatedAt, entity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}

	return nil
}

func (r *entityRepository) GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, entity_type_id, name, properties, source_upload_id, created_at, updated_at
		FROM engine_entities
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, entityID)
	entity, err := scanEntity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return entity, nil
}

func (r *entityRepository) GetByTypeAndName(ctx context.Context, typeID uuid.UUID, name string) (*models.Entity, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, entity_type_id, name, properties, source_upload_id, created_at, updated_at
		FROM engine_entities
		WHERE entity_type_id = $1 AND name = $2`

	row := scope.Conn.QueryRow(ctx, query, typeID, name)
	entity, err := scanEntity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return entity, nil
}

func (r *entityRepository) ListByType(ctx context.Context, typeID uuid.UUID) ([]*models.Entity, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, entity_type_id, name, properties, source_upload_id, created_at, updated_at
		FROM engine_entities
		WHERE entity_type_id = $1
		ORDER BY name`

	return r.queryEntities(ctx, scope, query, typeID)
}

func (r *entityRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Entity, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, entity_type_id, name, properties, source_upload_id, created_at, updated_at
		FROM engine_entities
		WHERE org_id = $1
		ORDER BY name`

	return r.queryEntities(ctx, scope, query, orgID)
}

func (r *entityRepository) queryEntities(ctx context.Context, scope *database.TenantScope, query string, args ...any) ([]*models.Entity, error) {
	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

func (r *entityRepository) Update(ctx context.Context, entity *models.Entity) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	entity.UpdatedAt = time.Now()

	propsJSON, err := models.PropertiesJSON(entity.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal entity properties: %w", err)
	}

	query := `
		UPDATE engine_entities
		SET name = $2, properties = $3, updated_at = $4
		WHERE id = $1`

	_, err = scope.Conn.Exec(ctx, query, entity.ID, entity.Name, propsJSON, entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}

	return nil
}

func (r *entityRepository) Delete(ctx context.Context, entityID uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	_, err := scope.Conn.Exec(ctx, `DELETE FROM engine_entities WHERE id = $1`, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	return nil
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	var propsJSON []byte

	err := row.Scan(
		&e.ID, &e.OrgID, &e.EntityTypeID, &e.Name,
		&propsJSON, &e.SourceUploadID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entity: %w", err)
	}

	if err := json.Unmarshal(propsJSON, &e.Properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity properties: %w", err)
	}

	return &e, nil
}
