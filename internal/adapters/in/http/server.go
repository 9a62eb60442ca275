package http

import (
	"context"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder         commands.CreateOrderCommandHandler
	OverrideOrderStatus commands.OverrideOrderStatusCommandHandler
	RequestAssignment   commands.RequestAssignmentCommandHandler
	AcceptOrder         commands.AcceptOrderCommandHandler
	AdvanceOrderStatus  commands.AdvanceOrderStatusCommandHandler
	DecideRequest       commands.DecideDeliveryRequestCommandHandler
	RegisterAgent       commands.RegisterAgentCommandHandler
	AgentLogin          commands.AgentLoginCommandHandler
	AdminLogin          commands.AdminLoginCommandHandler

	ListOrders         queries.ListOrdersQueryHandler
	GetOrder           queries.GetOrderQueryHandler
	ListAgentOrders    queries.ListAgentOrdersQueryHandler
	ListCustomerOrders queries.ListCustomerOrdersQueryHandler
}

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers  Handlers
	pinger    Pinger
	startedAt time.Time
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, pinger Pinger, startedAt time.Time) *Server {
	return &Server{handlers: handlers, pinger: pinger, startedAt: startedAt}
}

// ListOrders handles GET /api/orders.
func (s *Server) ListOrders(c echo.Context) error {
	views, err := s.handlers.ListOrders.Handle(c.Request().Context(), queries.NewListOrdersQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponses(views))
}

// CreateOrder handles POST /api/orders. A customer token fills the customer id.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrderRequest
	if err := c.Bind(&body); err != nil {
		return err
	}

	var customerID *kernel.UUID
	if id, ok := identity.CustomerID(Caller(c)); ok {
		customerID = &id
	}

	customer, err := order.NewCustomer(customerID, body.Name, body.Email, body.Address, body.Quantity)
	if err != nil {
		return err
	}
	product, err := order.NewProduct(body.ProductID, body.Title, body.Price, body.MainImage)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), customer, product)
	if err != nil {
		return err
	}

	created, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newOrderResponse(ports.OrderView{Snapshot: created}))
}

// GetOrder handles GET /api/orders/{id}.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return err
	}

	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(view))
}

// OverrideOrderStatus handles PUT /api/orders/{id} (admin).
func (s *Server) OverrideOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body StatusRequest
	if err = c.Bind(&body); err != nil {
		return err
	}

	cmd, err := commands.NewOverrideOrderStatusCommand(Caller(c), id, body.Status)
	if err != nil {
		return err
	}
	return s.respond(c, func(ctx context.Context) (order.Snapshot, error) {
		return s.handlers.OverrideOrderStatus.Handle(ctx, cmd)
	})
}

// ListAgentOrders handles GET /api/orders/agent.
func (s *Server) ListAgentOrders(c echo.Context) error {
	views, err := s.handlers.ListAgentOrders.Handle(c.Request().Context(), queries.NewListAgentOrdersQuery(Caller(c)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponses(views))
}

// RequestAssignment handles POST /api/orders/agent/{id}/request.
func (s *Server) RequestAssignment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRequestAssignmentCommand(Caller(c), id)
	if err != nil {
		return err
	}
	return s.respond(c, func(ctx context.Context) (order.Snapshot, error) {
		return s.handlers.RequestAssignment.Handle(ctx, cmd)
	})
}

// AcceptOrder handles POST /api/orders/agent/{id}/accept.
func (s *Server) AcceptOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAcceptOrderCommand(Caller(c), id)
	if err != nil {
		return err
	}
	return s.respond(c, func(ctx context.Context) (order.Snapshot, error) {
		return s.handlers.AcceptOrder.Handle(ctx, cmd)
	})
}

// AdvanceOrderStatus handles PUT /api/orders/agent/{id}/status.
func (s *Server) AdvanceOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body AdvanceStatusRequest
	if err = c.Bind(&body); err != nil {
		return err
	}

	cmd, err := commands.NewAdvanceOrderStatusCommand(Caller(c), id, body.NewStatus)
	if err != nil {
		return err
	}
	return s.respond(c, func(ctx context.Context) (order.Snapshot, error) {
		return s.handlers.AdvanceOrderStatus.Handle(ctx, cmd)
	})
}

// DecideDeliveryRequest handles POST /api/orders/admin/{id}/approve.
func (s *Server) DecideDeliveryRequest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body DecisionRequest
	if err = c.Bind(&body); err != nil {
		return err
	}

	cmd, err := commands.NewDecideDeliveryRequestCommand(Caller(c), id, body.Decision)
	if err != nil {
		return err
	}
	return s.respond(c, func(ctx context.Context) (order.Snapshot, error) {
		return s.handlers.DecideRequest.Handle(ctx, cmd)
	})
}

// ListCustomerOrders handles GET /api/orders/customer/{id}.
func (s *Server) ListCustomerOrders(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewListCustomerOrdersQuery(id)
	if err != nil {
		return err
	}

	views, err := s.handlers.ListCustomerOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponses(views))
}

// RegisterAgent handles POST /api/agents/register.
func (s *Server) RegisterAgent(c echo.Context) error {
	var body RegisterAgentRequest
	if err := c.Bind(&body); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterAgentCommand(agent.Profile{
		Name:          body.Name,
		Email:         body.Email,
		Address:       body.Address,
		Vehicle:       body.Vehicle,
		LicenseNumber: body.LicenseNumber,
	}, body.Password)
	if err != nil {
		return err
	}

	id, err := s.handlers.RegisterAgent.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, RegisterAgentResponse{ID: id})
}

// AgentLogin handles POST /api/agents/login.
func (s *Server) AgentLogin(c echo.Context) error {
	return s.login(c, s.handlers.AgentLogin.Handle)
}

// AdminLogin handles POST /api/admin/login.
func (s *Server) AdminLogin(c echo.Context) error {
	return s.login(c, s.handlers.AdminLogin.Handle)
}

// Health handles GET /health. It answers 503 while the store is unreachable.
func (s *Server) Health(c echo.Context) error {
	now := time.Now().UTC()
	response := HealthResponse{
		Status:    "ok",
		Uptime:    now.Sub(s.startedAt).Round(time.Second).String(),
		Timestamp: now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			response.Status = "unavailable"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) login(c echo.Context, handle func(context.Context, commands.LoginCommand) (commands.LoginResult, error)) error {
	var body CredentialsRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	cmd, err := commands.NewLoginCommand(body.Email, body.Password)
	if err != nil {
		return err
	}

	result, err := handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: result.Token, ExpiresAt: result.ExpiresAt, ID: result.AgentID})
}

func (s *Server) respond(c echo.Context, mutate func(context.Context) (order.Snapshot, error)) error {
	updated, err := mutate(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(ports.OrderView{Snapshot: updated}))
}

func pathID(c echo.Context) (kernel.UUID, error) {
	var id kernel.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return id, nil
}
