package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// GetOrderStatsQueryHandler feeds the order gauges refreshed by the stats job.
type GetOrderStatsQueryHandler struct {
	reader ports.OrderReader
}

func NewGetOrderStatsQueryHandler(reader ports.OrderReader) GetOrderStatsQueryHandler {
	return GetOrderStatsQueryHandler{reader: reader}
}

func (h GetOrderStatsQueryHandler) Handle(ctx context.Context, query GetOrderStatsQuery) (GetOrderStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatsQueryResponse{}, err
	}

	counts, err := h.reader.CountByStatus(ctx)
	if err != nil {
		return GetOrderStatsQueryResponse{}, err
	}

	resp := GetOrderStatsQueryResponse{ByStatus: make(map[order.Status]int, len(order.Lifecycle()))}
	for _, status := range order.Lifecycle() {
		resp.ByStatus[status] = counts[status]
		resp.Total += counts[status]
	}
	return resp, nil
}
