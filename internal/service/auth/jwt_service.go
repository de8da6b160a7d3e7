// Package auth validates the bearer tokens that identify the acting user.
// Tokens are issued by the external identity provider, which shares the
// HMAC secret with this service; the sub claim carries the user ID that
// owns requester and provider profiles.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RoleAdmin is the role claim of operators allowed to pair requesters and
// providers by hand.
const RoleAdmin = "admin"

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for userID. The identity
	// provider normally issues tokens; this is used by local tooling and tests.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// GenerateTokenWithRole is GenerateToken with a role claim.
	GenerateTokenWithRole(ctx context.Context, userID uuid.UUID, role string) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated claims of a token.
type Claims struct {
	// UserID is the user the token was issued for, parsed from sub.
	UserID uuid.UUID `json:"sub"`
	// Role is the optional role claim, e.g. RoleAdmin.
	Role string `json:"role,omitempty"`

	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
