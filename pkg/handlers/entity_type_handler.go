package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/auth"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/services"
)

// CreateEntityTypeRequest is the JSON body for creating an entity type.
type CreateEntityTypeRequest struct {
	Name       string                  `json:"name"`
	Icon       string                  `json:"icon"`
	Color      string                  `json:"color"`
	Properties []models.EntityProperty `json:"properties"`
}

// UpdateEntityTypeRequest is the JSON body for updating an entity type.
type UpdateEntityTypeRequest struct {
	Name       string                  `json:"name"`
	Icon       string                  `json:"icon"`
	Color      string                  `json:"color"`
	Properties []models.EntityProperty `json:"properties"`
}

// EntityTypeHandler handles entity type CRUD.
type EntityTypeHandler struct {
	ontologyService services.OntologyService
	logger          *zap.Logger
}

// NewEntityTypeHandler creates a new EntityTypeHandler.
func NewEntityTypeHandler(ontologyService services.OntologyService, logger *zap.Logger) *EntityTypeHandler {
	return &EntityTypeHandler{
		ontologyService: ontologyService,
		logger:          logger.Named("entity-type-handler"),
	}
}

// RegisterRoutes registers the entity type handler's routes on the given mux.
func (h *EntityTypeHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	base := "/api/orgs/{oid}/entity-types"

	mux.HandleFunc("POST "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.List)))
	mux.HandleFunc("GET "+base+"/{etid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Get)))
	mux.HandleFunc("PUT "+base+"/{etid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Update)))
	mux.HandleFunc("DELETE "+base+"/{etid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Delete)))
}

// Create handles POST /api/orgs/{oid}/entity-types.
func (h *EntityTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateEntityTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	et := &models.EntityType{
		Name:       req.Name,
		Icon:       req.Icon,
		Color:      req.Color,
		Properties: req.Properties,
	}

	if err := h.ontologyService.CreateEntityType(r.Context(), orgID, et); err != nil {
		h.logger.Error("Failed to create entity type", zap.Error(err))
		writeServiceError(w, h.logger, err, "create_entity_type_failed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, et); err != nil {
		h.logger.Error("Failed to write entity type response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/entity-types.
func (h *EntityTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	types, err := h.ontologyService.ListEntityTypes(r.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list entity types", zap.Error(err))
		writeServiceError(w, h.logger, err, "list_entity_types_failed")
		return
	}
	if types == nil {
		types = []*models.EntityType{}
	}

	if err := WriteJSON(w, http.StatusOK, types); err != nil {
		h.logger.Error("Failed to write entity types response", zap.Error(err))
	}
}

// Get handles GET /api/orgs/{oid}/entity-types/{etid}.
func (h *EntityTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	typeID, ok := ParseEntityTypeID(w, r, h.logger)
	if !ok {
		return
	}

	et, err := h.ontologyService.GetEntityType(r.Context(), typeID)
	if err != nil {
		h.logger.Error("Failed to get entity type", zap.Error(err))
		writeServiceError(w, h.logger, err, "get_entity_type_failed")
		return
	}
	if et == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "entity_type_not_found", "Entity type not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, et); err != nil {
		h.logger.Error("Failed to write entity type response", zap.Error(err))
	}
}

// Update handles PUT /api/orgs/{oid}/entity-types/{etid}.
func (h *EntityTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}
	typeID, ok := ParseEntityTypeID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateEntityTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	et := &models.EntityType{
		ID:         typeID,
		OrgID:      orgID,
		Name:       req.Name,
		Icon:       req.Icon,
		Color:      req.Color,
		Properties: req.Properties,
	}

	if err := h.ontologyService.UpdateEntityType(r.Context(), et); err != nil {
		h.logger.Error("Failed to update entity type",
			zap.String("entity_type_id", typeID.String()),
			zap.Error(err))
		writeServiceError(w, h.logger, err, "update_entity_type_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, et); err != nil {
		h.logger.Error("Failed to write entity type response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{oid}/entity-types/{etid}.
// Entities and relationships of the type are removed with it.
func (h *EntityTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	typeID, ok := ParseEntityTypeID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ontologyService.DeleteEntityType(r.Context(), typeID); err != nil {
		h.logger.Error("Failed to delete entity type", zap.Error(err))
		writeServiceError(w, h.logger, err, "delete_entity_type_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
