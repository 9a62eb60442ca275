package queries

import (
	"context"

	"fulfillment/internal/core/ports"
)

// ListCustomerOrdersQueryHandler lists the orders placed by one customer,
// newest first.
type ListCustomerOrdersQueryHandler struct {
	reader ports.OrderReader
}

func NewListCustomerOrdersQueryHandler(reader ports.OrderReader) ListCustomerOrdersQueryHandler {
	return ListCustomerOrdersQueryHandler{reader: reader}
}

func (h ListCustomerOrdersQueryHandler) Handle(ctx context.Context, query ListCustomerOrdersQuery) ([]ports.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	customerID := query.CustomerID()
	return h.reader.ListOrders(ctx, ports.OrderFilter{CustomerID: &customerID})
}
