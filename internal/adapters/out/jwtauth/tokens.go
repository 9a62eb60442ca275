// Package jwtauth issues and verifies HS256 bearer tokens carrying an identity.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "fulfillment"

// DefaultTTL is used when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

// ErrSecretIsRequired is returned by New without a signing secret.
var ErrSecretIsRequired = errs.NewValueIsRequiredError("JWT_SECRET")

// Claims are the registered claims plus the caller's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Config configures a Tokens instance.
type Config struct {
	Secret string
	TTL    time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Tokens implements ports.TokenIssuer and ports.TokenVerifier.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ ports.TokenIssuer   = (*Tokens)(nil)
	_ ports.TokenVerifier = (*Tokens)(nil)
)

// New creates a token service.
func New(cfg Config) (*Tokens, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretIsRequired
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tokens{secret: []byte(cfg.Secret), ttl: cfg.TTL, now: cfg.Now}, nil
}

// Issue signs a token for id.
func (t *Tokens) Issue(id identity.Identity) (string, time.Time, error) {
	if id == nil {
		return "", time.Time{}, errs.NewValueIsRequiredError("identity")
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		Role: string(id.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer and expiry and returns the identity.
func (t *Tokens) Verify(token string) (identity.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewUnauthorizedError("token expired")
		}
		return nil, errs.NewUnauthorizedError("invalid token")
	}
	if !parsed.Valid {
		return nil, errs.NewUnauthorizedError("invalid token")
	}

	id, err := identity.FromClaims(claims.Role, claims.Subject)
	if err != nil {
		return nil, errs.NewUnauthorizedError("invalid token claims")
	}
	return id, nil
}
