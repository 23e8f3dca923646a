package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseOrgID extracts and validates the org ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: oid
func ParseOrgID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "oid", "invalid_org_id", "Invalid org ID format", logger)
}

// ParseUploadID extracts and validates the upload ID from the request path.
// Expects path parameter: upid
func ParseUploadID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "upid", "invalid_upload_id", "Invalid upload ID format", logger)
}

// ParseEntityTypeID extracts and validates the entity type ID from the request path.
// Expects path parameter: etid
func ParseEntityTypeID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "etid", "invalid_entity_type_id", "Invalid entity type ID format", logger)
}

// ParseEntityID extracts and validates the entity ID from the request path.
// Expects path parameter: eid
func ParseEntityID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "eid", "invalid_entity_id", "Invalid entity ID format", logger)
}

// ParseRelationshipTypeID extracts and validates the relationship type ID from
// the request path.
// Expects path parameter: rtid
func ParseRelationshipTypeID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "rtid", "invalid_relationship_type_id", "Invalid relationship type ID format", logger)
}

// ParseRelationshipID extracts and validates the relationship ID from the
// request path.
// Expects path parameter: rid
func ParseRelationshipID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "rid", "invalid_relationship_id", "Invalid relationship ID format", logger)
}

func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
