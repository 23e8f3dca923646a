package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClaimsFromContext(t *testing.T) {
	orgID := uuid.New()

	t.Run("valid claims", func(t *testing.T) {
		claims := &Claims{OrgID: orgID.String()}
		claims.Subject = "user-123"
		ctx := context.WithValue(context.Background(), ClaimsKey, claims)

		gotOrg, gotUser, err := ExtractClaimsFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, orgID, gotOrg)
		assert.Equal(t, "user-123", gotUser)
	})

	t.Run("no claims in context", func(t *testing.T) {
		_, _, err := ExtractClaimsFromContext(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing org ID", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ClaimsKey, &Claims{})
		_, _, err := ExtractClaimsFromContext(ctx)
		assert.Error(t, err)
	})

	t.Run("malformed org ID", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ClaimsKey, &Claims{OrgID: "not-a-uuid"})
		_, _, err := ExtractClaimsFromContext(ctx)
		assert.Error(t, err)
	})
}

func TestGetClaims(t *testing.T) {
	claims := &Claims{OrgID: uuid.NewString()}
	ctx := context.WithValue(context.Background(), ClaimsKey, claims)

	got, ok := GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)

	_, ok = GetClaims(context.Background())
	assert.False(t, ok)
}
