package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationshipType is a named, directed relation between two entity types
// (e.g. Instructor "teaches_at" Location).
// Stored in engine_relationship_types table.
type RelationshipType struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FromTypeID  uuid.UUID `json:"from_type_id"`
	ToTypeID    uuid.UUID `json:"to_type_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntityRelationship links two specific entities under a RelationshipType.
// Endpoint typing is enforced at the service layer: the storage schema keeps
// no constraint tying the endpoints to the type's declared from/to pair.
// Stored in engine_entity_relationships table.
type EntityRelationship struct {
	ID                 uuid.UUID                `json:"id"`
	OrgID              uuid.UUID                `json:"org_id"`
	RelationshipTypeID uuid.UUID                `json:"relationship_type_id"`
	FromEntityID       uuid.UUID                `json:"from_entity_id"`
	ToEntityID         uuid.UUID                `json:"to_entity_id"`
	Properties         map[string]PropertyValue `json:"properties,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}
