package queries

import (
	"context"

	"fulfillment/internal/core/ports"
)

// ListOrdersQueryHandler lists all orders for the storefront and admin views.
type ListOrdersQueryHandler struct {
	reader ports.OrderReader
}

// NewListOrdersQueryHandler creates the handler.
func NewListOrdersQueryHandler(reader ports.OrderReader) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{reader: reader}
}

// Handle returns every order, newest first.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]ports.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.reader.ListOrders(ctx, ports.OrderFilter{})
}
