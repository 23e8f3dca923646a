package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseOrgID(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		r := httptest.NewRequest(http.MethodGet, "/api/orgs/"+id.String()+"/uploads", nil)
		r.SetPathValue("oid", id.String())
		w := httptest.NewRecorder()

		parsed, ok := ParseOrgID(w, r, logger)
		assert.True(t, ok)
		assert.Equal(t, id, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/orgs/nope/uploads", nil)
		r.SetPathValue("oid", "nope")
		w := httptest.NewRecorder()

		parsed, ok := ParseOrgID(w, r, logger)
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, parsed)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
