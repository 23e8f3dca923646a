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

// CreateEntityRequest is the JSON body for creating an entity.
type CreateEntityRequest struct {
	EntityTypeID uuid.UUID                       `json:"entity_type_id"`
	Name         string                          `json:"name"`
	Properties   map[string]models.PropertyValue `json:"properties"`
}

// UpdateEntityRequest is the JSON body for updating an entity.
type UpdateEntityRequest struct {
	Name       string                          `json:"name"`
	Properties map[string]models.PropertyValue `json:"properties"`
}

// EntityHandler handles entity CRUD.
type EntityHandler struct {
	ontologyService services.OntologyService
	logger          *zap.Logger
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(ontologyService services.OntologyService, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		ontologyService: ontologyService,
		logger:          logger.Named("entity-handler"),
	}
}

// RegisterRoutes registers the entity handler's routes on the given mux.
func (h *EntityHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	base := "/api/orgs/{oid}/entities"

	mux.HandleFunc("POST "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.List)))
	mux.HandleFunc("GET "+base+"/{eid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Get)))
	mux.HandleFunc("PUT "+base+"/{eid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Update)))
	mux.HandleFunc("DELETE "+base+"/{eid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Delete)))
}

// Create handles POST /api/orgs/{oid}/entities.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entity := &models.Entity{
		EntityTypeID: req.EntityTypeID,
		Name:         req.Name,
		Properties:   req.Properties,
	}

	if err := h.ontologyService.CreateEntity(r.Context(), orgID, entity); err != nil {
		h.logger.Error("Failed to create entity", zap.Error(err))
		writeServiceError(w, h.logger, err, "create_entity_failed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, entity); err != nil {
		h.logger.Error("Failed to write entity response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/entities.
// An optional type_id query parameter limits results to one entity type.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var typeID *uuid.UUID
	if raw := r.URL.Query().Get("type_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_type_id", "Invalid type_id format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		typeID = &parsed
	}

	entities, err := h.ontologyService.ListEntities(r.Context(), orgID, typeID)
	if err != nil {
		h.logger.Error("Failed to list entities", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_entities_failed")
		return
	}
	if entities == nil {
		entities = []*models.Entity{}
	}

	if err := WriteJSON(w, http.StatusOK, entities); err != nil {
		h.logger.Error("Failed to write entities response", zap.Error(err))
	}
}

// Get handles GET /api/orgs/{oid}/entities/{eid}.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	entity, err := h.ontologyService.GetEntity(r.Context(), entityID)
	if err != nil {
		h.logger.Error("Failed to get entity", zap.Error(err))
		writeServiceError(w, h.logger, err, "get_entity_failed")
		return
	}
	if entity == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "entity_not_found", "Entity not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, entity); err != nil {
		h.logger.Error("Failed to write entity response", zap.Error(err))
	}
}

// Update handles PUT /api/orgs/{oid}/entities/{eid}.
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entity := &models.Entity{
		ID:         entityID,
		OrgID:      orgID,
		Name:       req.Name,
		Properties: req.Properties,
	}

	if err := h.ontologyService.UpdateEntity(r.Context(), entity); err != nil {
		h.logger.Error("Failed to update entity",
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		writeServiceError(w, h.logger, err, "update_entity_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, entity); err != nil {
		h.logger.Error("Failed to write entity response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/entities/{eid}.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ontologyService.DeleteEntity(r.Context(), entityID); err != nil {
		h.logger.Error("Failed to delete entity", zap.Error(err))
		writeServiceError(w, h.logger, err, "delete_entity_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
