// Package agent provides the delivery agent account aggregate: identity,
// profile and password hash. Password hashing itself lives behind
// ports.PasswordHasher.
package agent
