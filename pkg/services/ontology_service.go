package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/repositories"
)

// OntologyService owns the entity-type, entity, and relationship surface.
// All writes validate against the owning entity type before touching the
// database.
type OntologyService interface {
	// ============================================================================
	// Entity Types
	// ============================================================================

	CreateEntityType(ctx context.Context, orgID uuid.UUID, et *models.EntityType) error
	GetEntityType(ctx context.Context, id uuid.UUID) (*models.EntityType, error)
	ListEntityTypes(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error)
	UpdateEntityType(ctx context.Context, et *models.EntityType) error
	DeleteEntityType(ctx context.Context, id uuid.UUID) error

	// ============================================================================
	// Entities
	// ============================================================================

	CreateEntity(ctx context.Context, orgID uuid.UUID, entity *models.Entity) error
	GetEntity(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	ListEntities(ctx context.Context, orgID uuid.UUID, typeID *uuid.UUID) ([]*models.Entity, error)
	UpdateEntity(ctx context.Context, entity *models.Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error

	// ============================================================================
	// Relationships
	// ============================================================================

	CreateRelationshipType(ctx context.Context, orgID uuid.UUID, rt *models.RelationshipType) error
	ListRelationshipTypes(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error)
	DeleteRelationshipType(ctx context.Context, id uuid.UUID) error

	CreateRelationship(ctx context.Context, orgID uuid.UUID, rel *models.EntityRelationship) error
	ListRelationships(ctx context.Context, orgID uuid.UUID, entityID *uuid.UUID) ([]*models.EntityRelationship, error)
	DeleteRelationship(ctx context.Context, id uuid.UUID) error
}

type ontologyService struct {
	entityTypeRepo   repositories.EntityTypeRepository
	entityRepo       repositories.EntityRepository
	relationshipRepo repositories.RelationshipRepository
	logger           *zap.Logger
}

// NewOntologyService creates a new OntologyService.
func NewOntologyService(
	entityTypeRepo repositories.EntityTypeRepository,
	entityRepo repositories.EntityRepository,
	relationshipRepo repositories.RelationshipRepository,
	logger *zap.Logger,
) OntologyService {
	return &ontologyService{
		entityTypeRepo:   entityTypeRepo,
		entityRepo:       entityRepo,
		relationshipRepo: relationshipRepo,
		logger:           logger.Named("ontology-service"),
	}
}

var _ OntologyService = (*ontologyService)(nil)

// ============================================================================
// Entity Types
// ============================================================================

func (s *ontologyService) CreateEntityType(ctx context.Context, orgID uuid.UUID, et *models.EntityType) error {
	et.OrgID = orgID
	et.Name = strings.TrimSpace(et.Name)
	if et.Name == "" {
		return fmt.Errorf("entity type name is required: %w", apperrors.ErrInvalidProperty)
	}
	if et.Slug == "" {
		et.Slug = models.SlugForName(et.Name)
	}
	if err := et.Validate(); err != nil {
		return err
	}
	return s.entityTypeRepo.Create(ctx, et)
}

func (s *ontologyService) GetEntityType(ctx context.Context, id uuid.UUID) (*models.EntityType, error) {
	return s.entityTypeRepo.GetByID(ctx, id)
}

func (s *ontologyService) ListEntityTypes(ctx context.Context, orgID uuid.UUID) ([]*models.EntityType, error) {
	return s.entityTypeRepo.ListByOrg(ctx, orgID)
}

func (s *ontologyService) UpdateEntityType(ctx context.Context, et *models.EntityType) error {
	existing, err := s.entityTypeRepo.GetByID(ctx, et.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("entity type %s: %w", et.ID, apperrors.ErrNotFound)
	}
	if err := et.Validate(); err != nil {
		return err
	}
	return s.entityTypeRepo.Update(ctx, et)
}

func (s *ontologyService) DeleteEntityType(ctx context.Context, id uuid.UUID) error {
	return s.entityTypeRepo.Delete(ctx, id)
}

// ============================================================================
// Entities
// ============================================================================

func (s *ontologyService) CreateEntity(ctx context.Context, orgID uuid.UUID, entity *models.Entity) error {
	entity.OrgID = orgID
	entity.Name = strings.TrimSpace(entity.Name)
	if entity.Name == "" {
		return fmt.Errorf("entity name is required: %w", apperrors.ErrInvalidProperty)
	}

	entityType, err := s.entityTypeRepo.GetByID(ctx, entity.EntityTypeID)
	if err != nil {
		return err
	}
	if entityType == nil {
		return fmt.Errorf("entity type %s: %w", entity.EntityTypeID, apperrors.ErrNotFound)
	}
	if err := models.ValidateProperties(entityType, entity.Properties); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidProperty, err)
	}

	existing, err := s.entityRepo.GetByTypeAndName(ctx, entity.EntityTypeID, entity.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("entity %q already exists for this type: %w", entity.Name, apperrors.ErrConflict)
	}

	return s.entityRepo.Create(ctx, entity)
}

func (s *ontologyService) GetEntity(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	return s.entityRepo.GetByID(ctx, id)
}

func (s *ontologyService) ListEntities(ctx context.Context, orgID uuid.UUID, typeID *uuid.UUID) ([]*models.Entity, error) {
	if typeID != nil {
		return s.entityRepo.ListByType(ctx, *typeID)
	}
	return s.entityRepo.ListByOrg(ctx, orgID)
}

func (s *ontologyService) UpdateEntity(ctx context.Context, entity *models.Entity) error {
	existing, err := s.entityRepo.GetByID(ctx, entity.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("entity %s: %w", entity.ID, apperrors.ErrNotFound)
	}

	entityType, err := s.entityTypeRepo.GetByID(ctx, existing.EntityTypeID)
	if err != nil {
		return err
	}
	if entityType == nil {
		return fmt.Errorf("entity type %s: %w", existing.EntityTypeID, apperrors.ErrNotFound)
	}
	if err := models.ValidateProperties(entityType, entity.Properties); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidProperty, err)
	}

	return s.entityRepo.Update(ctx, entity)
}

func (s *ontologyService) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	return s.entityRepo.Delete(ctx, id)
}

// ============================================================================
// Relationships
// ============================================================================

func (s *ontologyService) CreateRelationshipType(ctx context.Context, orgID uuid.UUID, rt *models.RelationshipType) error {
	rt.OrgID = orgID
	rt.Name = strings.TrimSpace(rt.Name)
	if rt.Name == "" {
		return fmt.Errorf("relationship type name is required: %w", apperrors.ErrInvalidProperty)
	}

	for _, typeID := range []uuid.UUID{rt.FromTypeID, rt.ToTypeID} {
		et, err := s.entityTypeRepo.GetByID(ctx, typeID)
		if err != nil {
			return err
		}
		if et == nil {
			return fmt.Errorf("entity type %s: %w", typeID, apperrors.ErrNotFound)
		}
	}

	existing, err := s.relationshipRepo.GetTypeByName(ctx, rt.FromTypeID, rt.ToTypeID, rt.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("relationship type %q already exists for this pair: %w", rt.Name, apperrors.ErrConflict)
	}

	return s.relationshipRepo.CreateType(ctx, rt)
}

func (s *ontologyService) ListRelationshipTypes(ctx context.Context, orgID uuid.UUID) ([]*models.RelationshipType, error) {
	return s.relationshipRepo.ListTypesByOrg(ctx, orgID)
}

func (s *ontologyService) DeleteRelationshipType(ctx context.Context, id uuid.UUID) error {
	return s.relationshipRepo.DeleteType(ctx, id)
}

// CreateRelationship enforces that both endpoints match the relationship
// type's declared from/to entity types.
func (s *ontologyService) CreateRelationship(ctx context.Context, orgID uuid.UUID, rel *models.EntityRelationship) error {
	rel.OrgID = orgID

	relType, err := s.relationshipRepo.GetTypeByID(ctx, rel.RelationshipTypeID)
	if err != nil {
		return err
	}
	if relType == nil {
		return fmt.Errorf("relationship type %s: %w", rel.RelationshipTypeID, apperrors.ErrNotFound)
	}

	from, err := s.entityRepo.GetByID(ctx, rel.FromEntityID)
	if err != nil {
		return err
	}
	if from == nil {
		return fmt.Errorf("entity %s: %w", rel.FromEntityID, apperrors.ErrNotFound)
	}
	to, err := s.entityRepo.GetByID(ctx, rel.ToEntityID)
	if err != nil {
		return err
	}
	if to == nil {
		return fmt.Errorf("entity %s: %w", rel.ToEntityID, apperrors.ErrNotFound)
	}

	if from.EntityTypeID != relType.FromTypeID {
		return fmt.Errorf("entity %q is not of the relationship's from type: %w", from.Name, apperrors.ErrTypeMismatch)
	}
	if to.EntityTypeID != relType.ToTypeID {
		return fmt.Errorf("entity %q is not of the relationship's to type: %w", to.Name, apperrors.ErrTypeMismatch)
	}

	return s.relationshipRepo.CreateRelationship(ctx, rel)
}

func (s *ontologyService) ListRelationships(ctx context.Context, orgID uuid.UUID, entityID *uuid.UUID) ([]*models.EntityRelationship, error) {
	if entityID != nil {
		return s.relationshipRepo.ListRelationshipsByEntity(ctx, *entityID)
	}
	return s.relationshipRepo.ListRelationshipsByOrg(ctx, orgID)
}

func (s *ontologyService) DeleteRelationship(ctx context.Context, id uuid.UUID) error {
	return s.relationshipRepo.DeleteRelationship(ctx, id)
}
