package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/auth"
	"github.com/aetherhq/aether-engine/pkg/gap"
	"github.com/aetherhq/aether-engine/pkg/services"
)

// GapHandler serves the week-by-dimension gap matrix.
type GapHandler struct {
	gapService services.GapService
	logger     *zap.Logger
}

// NewGapHandler creates a new GapHandler.
func NewGapHandler(gapService services.GapService, logger *zap.Logger) *GapHandler {
	return &GapHandler{
		gapService: gapService,
		logger:     logger.Named("gap-handler"),
	}
}

// RegisterRoutes registers the gap handler's routes on the given mux.
func (h *GapHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("GET /api/orgs/{oid}/gap-matrix",
		authMiddleware.RequireAuthWithPathValidation("oid")(tenantMiddleware(h.Matrix)))
}

// Matrix handles GET /api/orgs/{oid}/gap-matrix.
// Query parameters: from and to (YYYY-MM-DD, inclusive) and zero or more
// dimension values limiting which dimension fields are returned.
func (h *GapHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	query := r.URL.Query()

	from, ok := h.parseDateParam(w, query.Get("from"), "from")
	if !ok {
		return
	}
	to, ok := h.parseDateParam(w, query.Get("to"), "to")
	if !ok {
		return
	}
	if to.Before(from) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_range", "'to' must not be before 'from'"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	req := gap.Request{
		From:       from,
		To:         to,
		Dimensions: query["dimension"],
	}

	result, err := h.gapService.Matrix(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("Failed to compute gap matrix",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "gap_matrix_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write gap matrix response", zap.Error(err))
	}
}

func (h *GapHandler) parseDateParam(w http.ResponseWriter, raw, name string) (time.Time, bool) {
	if raw == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_"+name, "Query parameter '"+name+"' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_"+name, "Query parameter '"+name+"' must be YYYY-MM-DD"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return time.Time{}, false
	}
	return t, true
}
