package memory

import (
	"context"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// OrderReader implements ports.OrderReader over committed state.
type OrderReader struct {
	store *Store
}

// NewOrderReader creates a reader over store.
func NewOrderReader(store *Store) *OrderReader {
	return &OrderReader{store: store}
}

// ListOrders returns the orders matching filter, newest first.
func (r *OrderReader) ListOrders(_ context.Context, filter ports.OrderFilter) ([]ports.OrderView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	views := make([]ports.OrderView, 0, len(r.store.orders))
	for _, s := range r.store.orders {
		if filter.VisibleTo != nil && !s.IsVisibleTo(*filter.VisibleTo) {
			continue
		}
		if filter.CustomerID != nil && !kernel.EqualPtr(s.CustomerID, filter.CustomerID) {
			continue
		}
		views = append(views, r.view(s))
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID.String() > views[j].ID.String()
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// GetOrder returns one order.
func (r *OrderReader) GetOrder(_ context.Context, id kernel.UUID) (ports.OrderView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.orders[id]
	if !ok {
		return ports.OrderView{}, errs.NewObjectNotFoundError("order", id.String())
	}
	return r.view(s), nil
}

// CountByStatus returns the number of orders per status.
func (r *OrderReader) CountByStatus(_ context.Context) (map[order.Status]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[order.Status]int)
	for _, s := range r.store.orders {
		counts[s.Status]++
	}
	return counts, nil
}

// view must be called with the read lock held.
func (r *OrderReader) view(s order.Snapshot) ports.OrderView {
	v := ports.OrderView{Snapshot: s}
	if s.AssignedAgent != nil {
		if a, ok := r.store.agents[*s.AssignedAgent]; ok {
			v.AssignedAgentName = a.profile.Name
		}
	}
	return v
}
