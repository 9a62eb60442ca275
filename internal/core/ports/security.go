package ports

import (
	"time"

	"fulfillment/internal/core/domain/model/identity"
)

// PasswordHasher hashes and checks agent passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// TokenIssuer issues bearer credentials for an identity.
type TokenIssuer interface {
	Issue(id identity.Identity) (token string, expiresAt time.Time, err error)
}

// TokenVerifier turns a bearer credential back into an identity. Invalid or
// expired tokens yield an error wrapping errs.ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}
