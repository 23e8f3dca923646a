package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/gap"
)

func TestGapHandler_Matrix(t *testing.T) {
	svc := &mockGapService{
		result: &gap.Result{
			Weeks:  []string{"2026-03-02"},
			Matrix: map[string]map[string]map[string]*gap.Cell{},
		},
	}
	h := NewGapHandler(svc, zap.NewNop())

	orgID := uuid.New()
	r := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/orgs/%s/gaps?from=2026-03-01&to=2026-03-31&dimension=instructor&dimension=location", orgID), nil)
	r.SetPathValue("oid", orgID.String())
	w := httptest.NewRecorder()

	h.Matrix(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), svc.lastRequest.From)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), svc.lastRequest.To)
	assert.Equal(t, []string{"instructor", "location"}, svc.lastRequest.Dimensions)

	var resp gap.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"2026-03-02"}, resp.Weeks)
}

func TestGapHandler_MatrixParamValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing from", "to=2026-03-31", "missing_from"},
		{"missing to", "from=2026-03-01", "missing_to"},
		{"bad from", "from=03/01/2026&to=2026-03-31", "invalid_from"},
		{"inverted range", "from=2026-03-31&to=2026-03-01", "invalid_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewGapHandler(&mockGapService{}, zap.NewNop())
			orgID := uuid.New()
			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/orgs/%s/gaps?%s", orgID, tt.query), nil)
			r.SetPathValue("oid", orgID.String())
			w := httptest.NewRecorder()

			h.Matrix(w, r)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp["error"])
		})
	}
}
