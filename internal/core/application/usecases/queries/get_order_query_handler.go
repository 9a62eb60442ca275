package queries

import (
	"context"

	"fulfillment/internal/core/ports"
)

// GetOrderQueryHandler loads a single order view. A missing order yields an
// error wrapping errs.ErrObjectNotFound.
type GetOrderQueryHandler struct {
	reader ports.OrderReader
}

func NewGetOrderQueryHandler(reader ports.OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{reader: reader}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (ports.OrderView, error) {
	if err := query.Validate(); err != nil {
		return ports.OrderView{}, err
	}
	return h.reader.GetOrder(ctx, query.OrderID())
}
