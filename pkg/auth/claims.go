// Package auth provides JWT-based authentication for aether-engine.
// Tokens are issued by the hosted auth provider and validated locally
// using its JWKS endpoints.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims structure from the auth provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds custom claims for org context.
type Claims struct {
	jwt.RegisteredClaims
	OrgID string   `json:"oid,omitempty"`   // Organization UUID
	Email string   `json:"email,omitempty"` // User email address
	Roles []string `json:"roles,omitempty"` // User roles within the org
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// ExtractClaimsFromContext extracts org ID and user ID from JWT claims in context.
// Returns error if not authenticated or claims are invalid.
func ExtractClaimsFromContext(ctx context.Context) (uuid.UUID, string, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, "", fmt.Errorf("authentication required: no claims in context")
	}

	if claims.OrgID == "" {
		return uuid.Nil, "", fmt.Errorf("missing org ID in JWT claims")
	}

	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid org ID format: %w", err)
	}

	return orgID, claims.Subject, nil
}
