// Package bcrypthash hashes agent passwords with bcrypt.
package bcrypthash

import (
	"fulfillment/internal/core/ports"

	"golang.org/x/crypto/bcrypt"
)

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	cost int
}

var _ ports.PasswordHasher = Hasher{}

// New creates a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func New(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash.
func (h Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
