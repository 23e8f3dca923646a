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

// RelationshipColumn binds one upload column to a relationship: each cell
// names an entity of the target type, resolved by exact name match.
type RelationshipColumn struct {
	Header       string    `json:"header"`
	TargetTypeID uuid.UUID `json:"target_type_id"`
	Name         string    `json:"name"`
}

// ProjectionConfig describes how to project upload rows onto the ontology.
type ProjectionConfig struct {
	EntityTypeID     uuid.UUID            `json:"entity_type_id"`
	NameColumn       string               `json:"name_column"`
	ColumnToProperty map[string]string    `json:"column_to_property"`
	Relationships    []RelationshipColumn `json:"relationships,omitempty"`
}

// ProjectionResult reports what one projection pass did.
type ProjectionResult struct {
	EntitiesCreated      int `json:"entities_created"`
	EntitiesUpdated      int `json:"entities_updated"`
	RelationshipsCreated int `json:"relationships_created"`
	RowsSkipped          int `json:"rows_skipped"`
	ResolutionMisses     int `json:"resolution_misses"`
	PropertiesSkipped    int `json:"properties_skipped"`
}

// OntologyProjector turns upload rows into typed entities and relationships.
// Entities are upserted by (type, name): a row naming an existing entity
// merges its properties instead of creating a duplicate.
type OntologyProjector interface {
	Project(ctx context.Context, orgID, uploadID uuid.UUID, headers []string, rows []map[string]string, cfg ProjectionConfig) (*ProjectionResult, error)
}

type ontologyProjector struct {
	entityTypeRepo   repositories.EntityTypeRepository
	entityRepo       repositories.EntityRepository
	relationshipRepo repositories.RelationshipRepository
	logger           *zap.Logger
}

// NewOntologyProjector creates a new OntologyProjector.
func NewOntologyProjector(
	entityTypeRepo repositories.EntityTypeRepository,
	entityRepo repositories.EntityRepository,
	relationshipRepo repositories.RelationshipRepository,
	logger *zap.Logger,
) OntologyProjector {
	return &ontologyProjector{
		entityTypeRepo:   entityTypeRepo,
		entityRepo:       entityRepo,
		relationshipRepo: relationshipRepo,
		logger:           logger.Named("ontology-projector"),
	}
}

var _ OntologyProjector = (*ontologyProjector)(nil)

func (p *ontologyProjector) Project(ctx context.Context, orgID, uploadID uuid.UUID, headers []string, rows []map[string]string, cfg ProjectionConfig) (*ProjectionResult, error) {
	entityType, err := p.entityTypeRepo.GetByID(ctx, cfg.EntityTypeID)
	if err != nil {
		return nil, fmt.Errorf("load entity type: %w", err)
	}
	if entityType == nil {
		return nil, fmt.Errorf("entity type %s: %w", cfg.EntityTypeID, apperrors.ErrNotFound)
	}

	result := &ProjectionResult{}

	// Relationship types are created lazily on first use, then cached for
	// the rest of the pass.
	relTypes := make(map[string]*models.RelationshipType)

	for _, row := range rows {
		name := strings.TrimSpace(row[cfg.NameColumn])
		if name == "" {
			result.RowsSkipped++
			continue
		}

		entity, err := p.upsertEntity(ctx, orgID, uploadID, entityType, name, row, cfg, result)
		if err != nil {
			return nil, err
		}

		for _, rc := range cfg.Relationships {
			targetName := strings.TrimSpace(row[rc.Header])
			if targetName == "" {
				continue
			}

			target, err := p.entityRepo.GetByTypeAndName(ctx, rc.TargetTypeID, targetName)
			if err != nil {
				return nil, fmt.Errorf("resolve %q: %w", targetName, err)
			}
			if target == nil {
				result.ResolutionMisses++
				p.logger.Debug("Relationship target not found",
					zap.String("target", targetName),
					zap.String("target_type_id", rc.TargetTypeID.String()))
				continue
			}

			relType, err := p.relationshipType(ctx, orgID, entityType.ID, rc, relTypes)
			if err != nil {
				return nil, err
			}

			created, err := p.createRelationship(ctx, orgID, relType.ID, entity.ID, target.ID)
			if err != nil {
				return nil, err
			}
			if created {
				result.RelationshipsCreated++
			}
		}
	}

	p.logger.Info("Projection complete",
		zap.String("upload_id", uploadID.String()),
		zap.Int("entities_created", result.EntitiesCreated),
		zap.Int("entities_updated", result.EntitiesUpdated),
		zap.Int("relationships_created", result.RelationshipsCreated),
		zap.Int("resolution_misses", result.ResolutionMisses))

	return result, nil
}

// upsertEntity creates or merges one entity from one row. Merging keeps
// existing property values when the incoming cell is blank or unparseable.
func (p *ontologyProjector) upsertEntity(ctx context.Context, orgID, uploadID uuid.UUID, entityType *models.EntityType, name string, row map[string]string, cfg ProjectionConfig, result *ProjectionResult) (*models.Entity, error) {
	props := make(map[string]models.PropertyValue)
	for header, propKey := range cfg.ColumnToProperty {
		cell := strings.TrimSpace(row[header])
		if cell == "" {
			continue
		}
		prop, ok := entityType.PropertyByKey(propKey)
		if !ok {
			result.PropertiesSkipped++
			continue
		}
		value, err := models.ParsePropertyValue(prop.Type, cell)
		if err != nil {
			result.PropertiesSkipped++
			p.logger.Debug("Unparseable property cell",
				zap.String("property", propKey),
				zap.String("cell", cell))
			continue
		}
		props[propKey] = value
	}

	existing, err := p.entityRepo.GetByTypeAndName(ctx, entityType.ID, name)
	if err != nil {
		return nil, fmt.Errorf("look up entity %q: %w", name, err)
	}

	if existing == nil {
		entity := &models.Entity{
			OrgID:          orgID,
			EntityTypeID:   entityType.ID,
			Name:           name,
			Properties:     props,
			SourceUploadID: &uploadID,
		}
		if err := p.entityRepo.Create(ctx, entity); err != nil {
			return nil, fmt.Errorf("create entity %q: %w", name, err)
		}
		result.EntitiesCreated++
		return entity, nil
	}

	if existing.Properties == nil {
		existing.Properties = make(map[string]models.PropertyValue)
	}
	for key, value := range props {
		existing.Properties[key] = value
	}
	existing.SourceUploadID = &uploadID
	if err := p.entityRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update entity %q: %w", name, err)
	}
	result.EntitiesUpdated++
	return existing, nil
}

func (p *ontologyProjector) relationshipType(ctx context.Context, orgID, fromTypeID uuid.UUID, rc RelationshipColumn, cache map[string]*models.RelationshipType) (*models.RelationshipType, error) {
	cacheKey := rc.TargetTypeID.String() + "/" + rc.Name
	if rt, ok := cache[cacheKey]; ok {
		return rt, nil
	}

	rt, err := p.relationshipRepo.GetTypeByName(ctx, fromTypeID, rc.TargetTypeID, rc.Name)
	if err != nil {
		return nil, fmt.Errorf("look up relationship type %q: %w", rc.Name, err)
	}
	if rt == nil {
		rt = &models.RelationshipType{
			OrgID:      orgID,
			Name:       rc.Name,
			FromTypeID: fromTypeID,
			ToTypeID:   rc.TargetTypeID,
		}
		if err := p.relationshipRepo.CreateType(ctx, rt); err != nil {
			return nil, fmt.Errorf("create relationship type %q: %w", rc.Name, err)
		}
	}
	cache[cacheKey] = rt
	return rt, nil
}

// createRelationship skips duplicates so re-importing the same file is
// idempotent. Returns whether a new row was written.
func (p *ontologyProjector) createRelationship(ctx context.Context, orgID, relTypeID, fromID, toID uuid.UUID) (bool, error) {
	existing, err := p.relationshipRepo.ListRelationshipsByEntity(ctx, fromID)
	if err != nil {
		return false, fmt.Errorf("list relationships: %w", err)
	}
	for _, rel := range existing {
		if rel.RelationshipTypeID == relTypeID && rel.FromEntityID == fromID && rel.ToEntityID == toID {
			return false, nil
		}
	}

	rel := &models.EntityRelationship{
		OrgID:              orgID,
		RelationshipTypeID: relTypeID,
		FromEntityID:       fromID,
		ToEntityID:         toID,
	}
	if err := p.relationshipRepo.CreateRelationship(ctx, rel); err != nil {
		return false, fmt.Errorf("create relationship: %w", err)
	}
	return true, nil
}
