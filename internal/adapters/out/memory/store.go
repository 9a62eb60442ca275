// Package memory provides an in-process implementation of the order and agent
// stores. It honors the same contracts as the postgres adapter, including the
// conditional order update, and backs the memory storage mode and the
// concurrency tests of the dispatch commands.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// Store holds committed state shared by every unit of work created from it.
type Store struct {
	mu     sync.RWMutex
	orders map[kernel.UUID]order.Snapshot
	agents map[kernel.UUID]agentRecord
	emails map[string]kernel.UUID
}

type agentRecord struct {
	id           kernel.UUID
	profile      agent.Profile
	passwordHash string
	createdAt    time.Time
}

type orderWrite struct {
	snapshot order.Snapshot
	expected int64
	insert   bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		orders: make(map[kernel.UUID]order.Snapshot),
		agents: make(map[kernel.UUID]agentRecord),
		emails: make(map[string]kernel.UUID),
	}
}

// Ping always succeeds; it lets the store take part in health checks.
func (s *Store) Ping(context.Context) error {
	return nil
}

// apply checks every write against the committed state and applies all of them,
// or none.
func (s *Store) apply(orders []orderWrite, agents []agentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range orders {
		if err := s.checkOrderWrite(w); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if _, taken := s.emails[a.profile.Email]; taken {
			return agent.ErrEmailAlreadyRegistered
		}
		if _, dup := seen[a.profile.Email]; dup {
			return agent.ErrEmailAlreadyRegistered
		}
		seen[a.profile.Email] = struct{}{}
	}

	for _, w := range orders {
		s.orders[w.snapshot.ID] = w.snapshot
	}
	for _, a := range agents {
		s.agents[a.id] = a
		s.emails[a.profile.Email] = a.id
	}
	return nil
}

func (s *Store) checkOrderWrite(w orderWrite) error {
	stored, exists := s.orders[w.snapshot.ID]
	switch {
	case w.insert && exists:
		return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s already exists", w.snapshot.ID))
	case w.insert:
		return nil
	case !exists:
		return errs.NewObjectNotFoundError("order", w.snapshot.ID.String())
	case stored.Version != w.expected:
		return errs.NewVersionIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("order %s is at version %d, expected %d", w.snapshot.ID, stored.Version, w.expected),
		)
	}
	return nil
}

func (s *Store) order(id kernel.UUID) (order.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.orders[id]
	return snapshot, ok
}

func (s *Store) agent(id kernel.UUID) (agentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	return a, ok
}

func (s *Store) agentByEmail(email string) (agentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return agentRecord{}, false
	}
	return s.agents[id], true
}

func recordOf(a *agent.Agent) agentRecord {
	return agentRecord{
		id:           a.ID(),
		profile:      a.Profile(),
		passwordHash: a.PasswordHash(),
		createdAt:    a.CreatedAt(),
	}
}

func (r agentRecord) restore() (*agent.Agent, error) {
	return agent.RestoreAgent(r.id, r.profile, r.passwordHash, r.createdAt)
}
