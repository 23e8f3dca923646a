package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
	"github.com/aetherhq/aether-engine/pkg/auth"
	"github.com/aetherhq/aether-engine/pkg/jsonutil"
	"github.com/aetherhq/aether-engine/pkg/models"
	"github.com/aetherhq/aether-engine/pkg/services"
)

// SuggestMappingRequest carries the headers of a file about to be imported.
type SuggestMappingRequest struct {
	Headers []string `json:"headers"`
}

// SuggestMappingResponse returns an inferred role for every header.
type SuggestMappingResponse struct {
	Mapping map[string]models.ColumnRole `json:"mapping"`
}

// ImportUploadRequest is the JSON body for a full import. Row cells accept
// raw JSON numbers and booleans, which spreadsheet exports produce for
// unquoted columns.
type ImportUploadRequest struct {
	Name     string                       `json:"name"`
	DataType string                       `json:"data_type"`
	Headers  []string                     `json:"headers"`
	Rows     []map[string]json.RawMessage `json:"rows"`
	Mapping  map[string]models.ColumnRole `json:"mapping"`
	Ontology *services.ProjectionConfig   `json:"ontology,omitempty"`
}

// UploadHandler handles mapping suggestions and tabular imports.
type UploadHandler struct {
	importService services.ImportService
	logger        *zap.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(importService services.ImportService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		importService: importService,
		logger:        logger.Named("upload-handler"),
	}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	base := "/api/orgs/{oid}/uploads"

	mux.HandleFunc("POST "+base+"/suggest",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Suggest)))
	mux.HandleFunc("POST "+base+"/import",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Import)))
	mux.HandleFunc("GET "+base,
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.List)))
	mux.HandleFunc("GET "+base+"/{upid}",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Get)))
}

// Suggest handles POST /api/orgs/{oid}/uploads/suggest.
// Infers a column role for each header without persisting anything.
func (h *UploadHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	mapping := h.importService.Suggest(req.Headers)
	if err := WriteJSON(w, http.StatusOK, SuggestMappingResponse{Mapping: mapping}); err != nil {
		h.logger.Error("Failed to write suggest response", zap.Error(err))
	}
}

// Import handles POST /api/orgs/{oid}/uploads/import.
func (h *UploadHandler) Import(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req ImportUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rows := make([]map[string]string, len(req.Rows))
	for i, raw := range req.Rows {
		rows[i] = jsonutil.FlexibleStringRow(raw)
	}

	result, err := h.importService.Import(r.Context(), orgID, services.ImportRequest{
		Name:     req.Name,
		DataType: req.DataType,
		Headers:  req.Headers,
		Rows:     rows,
		Mapping:  req.Mapping,
		Ontology: req.Ontology,
	})
	if err != nil {
		h.logger.Error("Import failed",
			zap.String("org_id", orgID.String()),
			zap.Error(err))

		if errors.Is(err, apperrors.ErrInvalidMapping) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_mapping", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "entity_type_not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrUploadInProgress) {
			if err := ErrorResponse(w, http.StatusConflict, "upload_in_progress", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := ErrorResponse(w, http.StatusInternalServerError, "import_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to write import response", zap.Error(err))
	}
}

// List handles GET /api/orgs/{oid}/uploads.
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	uploads, err := h.importService.ListUploads(r.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list uploads", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_uploads_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if uploads == nil {
		uploads = []*models.Upload{}
	}

	if err := WriteJSON(w, http.StatusOK, uploads); err != nil {
		h.logger.Error("Failed to write uploads response", zap.Error(err))
	}
}

// Get handles GET /api/orgs/{oid}/uploads/{upid}.
func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	uploadID, ok := ParseUploadID(w, r, h.logger)
	if !ok {
		return
	}

	upload, err := h.importService.GetUpload(r.Context(), uploadID)
	if err != nil {
		h.logger.Error("Failed to get upload", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_upload_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if upload == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "upload_not_found", "Upload not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, upload); err != nil {
		h.logger.Error("Failed to write upload response", zap.Error(err))
	}
}
