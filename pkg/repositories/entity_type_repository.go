package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
	"github.com/aetherhq/aether-engine/pkg/database"
	"github.com/aetherhq/aether-engine/pkg/models"
)

// EntityTypeRepository provides data access for entity types.
type EntityTypeRepository interface {
	Create(ctx context.Context, et *models.EntityType) error
	GetByID(ctx context.Context, typeID uuid.UUID) (*models.EntityType, error)
	GetBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*models.EntityType, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error)
	Update(ctx context.Context, et *models.EntityType) error
	// Delete removes the type; entities of the type and relationships touching
	// them go with it via ON DELETE CASCADE.
	Delete(ctx context.Context, typeID uuid.UUID) error
}

type entityTypeRepository struct{}

// NewEntityTypeRepository creates a new EntityTypeRepository.
func NewEntityTypeRepository() EntityTypeRepository {
	return &entityTypeRepository{}
}

var _ EntityTypeRepository = (*entityTypeRepository)(nil)

func (r *entityTypeRepository) Create(ctx context.Context, et *models.EntityType) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	et.CreatedAt = now
	et.UpdatedAt = now

	if et.ID == uuid.Nil {
		et.ID = uuid.New()
	}

	propsJSON, err := json.Marshal(et.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	query := `
		INSERT INTO engine_entity_types (id, org_id, name, slug, icon, color, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = scope.Conn.Exec(ctx, query,
		et.ID, et.OrgID, et.Name, et.Slug, et.Icon, et.Color, propsJSON, et.CreatedAt, et.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("entity type slug %q already exists: %w", et.Slug, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create entity type: %w", err)
	}

	return nil
}

func (r *entityTypeRepository) GetByID(ctx context.Context, typeID uuid.UUID) (*models.EntityType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, slug, icon, color, properties, created_at, updated_at
		FROM engine_entity_types
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, typeID)
	et, err := scanEntityType(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return et, nil
}

func (r *entityTypeRepository) GetBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*models.EntityType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, slug, icon, color, properties, created_at, updated_at
		FROM engine_entity_types
		WHERE org_id = $1 AND slug = $2`

	row := scope.Conn.QueryRow(ctx, query, orgID, slug)
	et, err := scanEntityType(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return et, nil
}

func (r *entityTypeRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, slug, icon, color, properties, created_at, updated_at
		FROM engine_entity_types
		WHERE org_id = $1
		ORDER BY name`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity types: %w", err)
	}
	defer rows.Close()

	var types []*models.EntityType
	for rows.Next() {
		et, err := scanEntityType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, et)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity types: %w", err)
	}

	return types, nil
}

func (r *entityTypeRepository) Update(ctx context.Context, et *models.EntityType) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	et.UpdatedAt = time.Now()

	propsJSON, err := json.Marshal(et.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	query := `
		UPDATE engine_entity_types
		SET name = $2, slug = $3, icon = $4, color = $5, properties = $6, updated_at = $7
		WHERE id = $1`

	_, err = scope.Conn.Exec(ctx, query,
		et.ID, et.Name, et.Slug, et.Icon, et.Color, propsJSON, et.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entity type: %w", err)
	}

	return nil
}

func (r *entityTypeRepository) Delete(ctx context.Context, typeID uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	_, err := scope.Conn.Exec(ctx, `DELETE FROM engine_entity_types WHERE id = $1`, typeID)
	if err != nil {
		return fmt.Errorf("failed to delete entity type: %w", err)
	}

	return nil
}

func scanEntityType(row pgx.Row) (*models.EntityType, error) {
	var et models.EntityType
	var propsJSON []byte

	err := row.Scan(
		&et.ID, &et.OrgID, &et.Name, &et.Slug, &et.Icon, &et.Color,
		&propsJSON, &et.CreatedAt, &et.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entity type: %w", err)
	}

	if err := json.Unmarshal(propsJSON, &et.Properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity type properties: %w", err)
	}

	return &et, nil
}
