package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fulfillment/internal/adapters/in/http/openapi"
	"fulfillment/internal/core/ports"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig carries everything mounted next to the API handlers.
type RouterConfig struct {
	Verifier  ports.TokenVerifier
	Document  *openapi3.T
	Gatherer  prometheus.Gatherer
	Observer  RequestObserver
	WebSocket http.Handler
	Logger    *slog.Logger
}

// NewRouter builds the echo instance serving the API, ops endpoints and the
// websocket upgrade.
func NewRouter(s *Server, cfg RouterConfig) (*echo.Echo, error) {
	if cfg.Document == nil {
		return nil, errors.New("openapi document is required")
	}
	validator, err := openapi.NewValidator(cfg.Document)
	if err != nil {
		return nil, err
	}
	if err = openapi.RegisterSwagger(cfg.Document); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(cfg.Logger)

	e.Use(middleware.Recover())
	e.Use(LogRequests(cfg.Logger, cfg.Observer))

	e.GET("/health", s.Health)
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, cfg.Document)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.WebSocket != nil {
		e.GET("/ws", echo.WrapHandler(cfg.WebSocket))
	}

	api := e.Group("/api", ValidateRequests(validator), Authenticate(cfg.Verifier))

	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/agent", s.ListAgentOrders)
	api.GET("/orders/customer/:id", s.ListCustomerOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.PUT("/orders/:id", s.OverrideOrderStatus)
	api.POST("/orders/agent/:id/request", s.RequestAssignment)
	api.POST("/orders/agent/:id/accept", s.AcceptOrder)
	api.PUT("/orders/agent/:id/status", s.AdvanceOrderStatus)
	api.POST("/orders/admin/:id/approve", s.DecideDeliveryRequest)

	api.POST("/agents/register", s.RegisterAgent)
	api.POST("/agents/login", s.AgentLogin)
	api.POST("/admin/login", s.AdminLogin)

	return e, nil
}
