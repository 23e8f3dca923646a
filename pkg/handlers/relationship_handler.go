package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/auth"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/services"
)

// CreateRelationshipTypeRequest is the JSON body for creating a
// relationship type.
type CreateRelationshipTypeRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FromTypeID  uuid.UUID `json:"from_type_id"`
	ToTypeID    uuid.UUID `json:"to_type_id"`
}

// CreateRelationshipRequest is the JSON body for linking two entities.
type CreateRelationshipRequest struct {
	RelationshipTypeID uuid.UUID `json:"relationship_type_id"`
	FromEntityID       uuid.UUID `json:"from_entity_id"`
	ToEntityID         uuid.UUID `json:"to_entity_id"`
}

// RelationshipHandler handles relationship type and relationship CRUD.
type RelationshipHandler struct {
	ontologyService services.OntologyService
	logger          *zap.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(ontologyService services.OntologyService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		ontologyService: ontologyService,
		logger:          logger.Named("relationship-handler"),
	}
}

// RegisterRoutes registers the relationship handler's routes on the given mux.
func (h *RelationshipHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	typeBase := "/api/orgs/{oid}/relationship-types"
	relBase := "/api/orgs/{oid}/relationships"

	mux.HandleFunc("POST "+typeBase,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.CreateType)))
	mux.HandleFunc("GET "+typeBase,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.ListTypes)))
	mux.HandleFunc("DELETE "+typeBase+"/{rtid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.DeleteType)))

	mux.HandleFunc("POST "+relBase,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET "+relBase,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.List)))
	mux.HandleFunc("DELETE "+relBase+"/{rid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Delete)))
}

// CreateType handles POST /api/orgs/{oid}/relationship-types.
func (h *RelationshipHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateRelationshipTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rt := &models.RelationshipType{
		Name:        req.Name,
		Description: req.Description,
		FromTypeID:  req.FromTypeID,
		ToTypeID:    req.ToTypeID,
	}

	if err := h.ontologyService.CreateRelationshipType(r.Context(), orgID, rt); err != nil {
		h.logger.Error("Failed to create relationship type", zap.Error(err))
		writeServiceError(w, h.logger, err, "create_relationship_type_failed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, rt); err != nil {
		h.logger.Error("Failed to write relationship type response", zap.Error(err))
	}
}

// ListTypes handles GET /api/orgs/{oid}/relationship-types.
func (h *RelationshipHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	types, err := h.ontologyService.ListRelationshipTypes(r.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list relationship types", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_relationship_types_failed")
		return
	}
	if types == nil {
		types = []*models.RelationshipType{}
	}

	if err := WriteJSON(w, http.StatusOK, types); err != nil {
		h.logger.Error("Failed to write relationship types response", zap.Error(err))
	}
}

// DeleteType handles DELETE /api/orgs/{oid}/relationship-types/{rtid}.
// Relationships of the type are removed with it.
func (h *RelationshipHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	typeID, ok := ParseRelationshipTypeID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ontologyService.DeleteRelationshipType(r.Context(), typeID); err != nil {
		h.logger.Error("Failed to delete relationship type", zap.Error(err))
		writeServiceError(w, h.logger, err, "delete_relationship_type_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Create handles POST /api/orgs/{oid}/relationships.
func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rel := &models.EntityRelationship{
		RelationshipTypeID: req.RelationshipTypeID,
		FromEntityID:       req.FromEntityID,
		ToEntityID:         req.ToEntityID,
	}

	if err := h.ontologyService.CreateRelationship(r.Context(), orgID, rel); err != nil {
		h.logger.Error("Failed to create relationship", zap.Error(err))
		writeServiceError(w, h.logger, err, "create_relationship_failed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, rel); err != nil {
		h.logger.Error("Failed to write relationship response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/relationships.
// An optional entity_id query parameter limits results to relationships
// touching one entity.
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var entityID *uuid.UUID
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_entity_id", "Invalid entity_id format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		entityID = &parsed
	}

	rels, err := h.ontologyService.ListRelationships(r.Context(), orgID, entityID)
	if err != nil {
		h.logger.Error("Failed to list relationships", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_relationships_failed")
		return
	}
	if rels == nil {
		rels = []*models.EntityRelationship{}
	}

	if err := WriteJSON(w, http.StatusOK, rels); err != nil {
		h.logger.Error("Failed to write relationships response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/relationships/{rid}.
func (h *RelationshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	relID, ok := ParseRelationshipID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ontologyService.DeleteRelationship(r.Context(), relID); err != nil {
		h.logger.Error("Failed to delete relationship", zap.Error(err))
		writeServiceError(w, h.logger, err, "delete_relationship_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
