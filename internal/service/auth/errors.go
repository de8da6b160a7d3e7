package auth

import (
	"fmt"

	"github.com/dutrus/MESALIB/internal/domain"
)

// Token validation errors. Each wraps domain.ErrUnauthorized, so callers
// that only need the kind can test for that.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and
	// unexpected signing methods.
	ErrInvalidToken = fmt.Errorf("%w: invalid bearer token", domain.ErrUnauthorized)

	// ErrExpiredToken indicates the exp claim is in the past.
	ErrExpiredToken = fmt.Errorf("%w: bearer token has expired", domain.ErrUnauthorized)

	// ErrTokenNotYetValid indicates the nbf claim is in the future.
	ErrTokenNotYetValid = fmt.Errorf("%w: bearer token not yet valid", domain.ErrUnauthorized)

	// ErrMissingToken indicates an empty token string.
	ErrMissingToken = fmt.Errorf("%w: bearer token is missing", domain.ErrUnauthorized)

	// ErrInvalidSubject indicates the sub claim is not a user ID.
	ErrInvalidSubject = fmt.Errorf("%w: bearer token subject is not a user id", domain.ErrUnauthorized)
)
