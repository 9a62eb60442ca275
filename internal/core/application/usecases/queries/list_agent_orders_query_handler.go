package queries

import (
	"context"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// ListAgentOrdersQueryHandler serves the agent work list. Non-agent callers get
// services.ErrAgentOnly, anonymous callers services.ErrAuthenticationRequired.
type ListAgentOrdersQueryHandler struct {
	reader     ports.OrderReader
	dispatcher services.OrderDispatcher
}

func NewListAgentOrdersQueryHandler(reader ports.OrderReader) ListAgentOrdersQueryHandler {
	return ListAgentOrdersQueryHandler{reader: reader, dispatcher: services.NewOrderDispatcher()}
}

func (h ListAgentOrdersQueryHandler) Handle(ctx context.Context, query ListAgentOrdersQuery) ([]ports.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	agentID, err := h.dispatcher.RequireAgent(query.Caller())
	if err != nil {
		return nil, err
	}

	return h.reader.ListOrders(ctx, ports.OrderFilter{VisibleTo: &agentID})
}
