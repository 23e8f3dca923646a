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

// RelationshipRepository provides data access for relationship types and
// entity relationships.
type RelationshipRepository interface {
	// Relationship type operations
	CreateType(ctx context.Context, rt *models.RelationshipType) error
	GetTypeByID(ctx context.Context, typeID uuid.UUID) (*models.RelationshipType, error)
	// GetTypeByName looks up a type by its (from, to, name) triple; the
	// projector uses this to create types lazily on first use.
	GetTypeByName(ctx context.Context, fromTypeID, toTypeID uuid.UUID, name string) (*models.RelationshipType, error)
	ListTypesByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error)
	DeleteType(ctx context.Context, typeID uuid.UUID) error

	// Relationship operations
	CreateRelationship(ctx context.Context, rel *models.EntityRelationship) error
	GetRelationshipByID(ctx context.Context, relID uuid.UUID) (*models.EntityRelationship, error)
	ListRelationshipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityRelationship, error)
	ListRelationshipsByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.EntityRelationship, error)
	DeleteRelationship(ctx context.Context, relID uuid.UUID) error
}

type relationshipRepository struct{}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository() RelationshipRepository {
	return &relationshipRepository{}
}

var _ RelationshipRepository = (*relationshipRepository)(nil)

// ============================================================================
// Relationship Type Operations
// ============================================================================

func (r *relationshipRepository) CreateType(ctx context.Context, rt *models.RelationshipType) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	rt.CreatedAt = time.Now()
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}

	query := `
		INSERT INTO engine_relationship_types (id, org_id, name, description, from_type_id, to_type_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		rt.ID, rt.OrgID, rt.Name, rt.Description, rt.FromTypeID, rt.ToTypeID, rt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create relationship type: %w", err)
	}

	return nil
}

func (r *relationshipRepository) GetTypeByID(ctx context.Context, typeID uuid.UUID) (*models.RelationshipType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, description, from_type_id, to_type_id, created_at
		FROM engine_relationship_types
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, typeID)
	rt, err := scanRelationshipType(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rt, nil
}

func (r *relationshipRepository) GetTypeByName(ctx context.Context, fromTypeID, toTypeID uuid.UUID, name string) (*models.RelationshipType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, description, from_type_id, to_type_id, created_at
		FROM engine_relationship_types
		WHERE from_type_id = $1 AND to_type_id = $2 AND name = $3`

	row := scope.Conn.QueryRow(ctx, query, fromTypeID, toTypeID, name)
	rt, err := scanRelationshipType(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rt, nil
}

func (r *relationshipRepository) ListTypesByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, name, description, from_type_id, to_type_id, created_at
		FROM engine_relationship_types
		WHERE org_id = $1
		ORDER BY name`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationship types: %w", err)
	}
	defer rows.Close()

	var types []*models.RelationshipType
	for rows.Next() {
		rt, err := scanRelationshipType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship types: %w", err)
	}

	return types, nil
}

func (r *relationshipRepository) DeleteType(ctx context.Context, typeID uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	_, err := scope.Conn.Exec(ctx, `DELETE FROM engine_relationship_types WHERE id = $1`, typeID)
	if err != nil {
		return fmt.Errorf("failed to delete relationship type: %w", err)
	}

	return nil
}

// ============================================================================
// Relationship Operations
// ============================================================================

func (r *relationshipRepository) CreateRelationship(ctx context.Context, rel *models.EntityRelationship) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	rel.CreatedAt = time.Now()
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}

	propsJSON, err := models.PropertiesJSON(rel.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal relationship properties: %w", err)
	}

	query := `
		INSERT INTO engine_entity_relationships (id, org_id, relationship_type_id, from_entity_id, to_entity_id, properties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = scope.Conn.Exec(ctx, query,
		rel.ID, rel.OrgID, rel.RelationshipTypeID, rel.FromEntityID, rel.ToEntityID, propsJSON, rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entity relationship: %w", err)
	}

	return nil
}

func (r *relationshipRepository) GetRelationshipByID(ctx context.Context, relID uuid.UUID) (*models.EntityRelationship, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, relationship_type_id, from_entity_id, to_entity_id, properties, created_at
		FROM engine_entity_relationships
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, relID)
	rel, err := scanRelationship(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rel, nil
}

func (r *relationshipRepository) ListRelationshipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EntityRelationship, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, relationship_type_id, from_entity_id, to_entity_id, properties, created_at
		FROM engine_entity_relationships
		WHERE org_id = $1
		ORDER BY created_at`

	return r.queryRelationships(ctx, scope, query, orgID)
}

func (r *relationshipRepository) ListRelationshipsByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.EntityRelationship, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, relationship_type_id, from_entity_id, to_entity_id, properties, created_at
		FROM engine_entity_relationships
		WHERE from_entity_id = $1 OR to_entity_id = $1
		ORDER BY created_at`

	return r.queryRelationships(ctx, scope, query, entityID)
}

func (r *relationshipRepository) queryRelationships(ctx context.Context, scope *database.TenantScope, query string, args ...any) ([]*models.EntityRelationship, error) {
	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity relationships: %w", err)
	}
	defer rows.Close()

	var rels []*models.EntityRelationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity relationships: %w", err)
	}

	return rels, nil
}

func (r *relationshipRepository) DeleteRelationship(ctx context.Context, relID uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	_, err := scope.Conn.Exec(ctx, `DELETE FROM engine_entity_relationships WHERE id = $1`, relID)
	if err != nil {
		return fmt.Errorf("failed to delete entity relationship: %w", err)
	}

	return nil
}

// ============================================================================
// Helper Functions - Scan
// ============================================================================

func scanRelationshipType(row pgx.Row) (*models.RelationshipType, error) {
	var rt models.RelationshipType

	err := row.Scan(
		&rt.ID, &rt.OrgID, &rt.Name, &rt.Description, &rt.FromTypeID, &rt.ToTypeID, &rt.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan relationship type: %w", err)
	}

	return &rt, nil
}

func scanRelationship(row pgx.Row) (*models.EntityRelationship, error) {
	var rel models.EntityRelationship
	var propsJSON []byte

	err := row.Scan(
		&rel.ID, &rel.OrgID, &rel.RelationshipTypeID, &rel.FromEntityID, &rel.ToEntityID, &propsJSON, &rel.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entity relationship: %w", err)
	}

	if err := json.Unmarshal(propsJSON, &rel.Properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationship properties: %w", err)
	}

	return &rel, nil
}
