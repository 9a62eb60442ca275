package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/in/http/openapi"
	"fulfillment/internal/adapters/in/ws"
	"fulfillment/internal/adapters/out/bcrypthash"
	"fulfillment/internal/adapters/out/jwtauth"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/adapters/out/pgnotify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/fanout"
	"fulfillment/internal/jobs"
	"fulfillment/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/crypto/bcrypt"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// CompositionRoot owns every long-lived dependency of the service.
type CompositionRoot struct {
	config    Config
	logger    *slog.Logger
	startedAt time.Time

	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	reader     ports.OrderReader
	pinger     httpadapter.Pinger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	hub      *fanout.Hub
	relay    *pgnotify.Relay
	kafka    *kgo.Client

	publisher ports.EventPublisher
	tokens    *jwtauth.Tokens
	hasher    bcrypthash.Hasher
}

// NewCompositionRoot opens the configured store and builds the fanout and
// security infrastructure.
func NewCompositionRoot(config Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		config:    config,
		logger:    logger,
		startedAt: time.Now(),
		registry:  prometheus.NewRegistry(),
		hasher:    bcrypthash.New(bcrypt.DefaultCost),
	}
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.New(c.registry)

	tokens, err := jwtauth.New(jwtauth.Config{Secret: config.JWTSecret, TTL: config.JWTTTL})
	if err != nil {
		return nil, err
	}
	c.tokens = tokens

	if err = c.openStorage(); err != nil {
		return nil, err
	}

	c.hub = fanout.NewHub(fanout.HubConfig{Buffer: config.FanoutBuffer, Logger: logger, Observer: c.metrics})
	if config.FanoutRelayEnabled {
		c.relay = pgnotify.NewRelay(kernel.NewUUID().String(), config.FanoutRelayChannel,
			pgnotify.NewGormNotifier(c.gormDB), c.hub, logger)
		c.hub.AttachRelay(c.relay)
	}

	publishers := fanout.Tee{fanout.NewBroadcaster(c.hub, logger)}
	if len(config.KafkaBrokers) > 0 {
		c.kafka, err = kafka.NewClient(config.KafkaBrokers, config.KafkaOrderChangedTopic)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		publishers = append(publishers, kafka.NewPublisher(c.kafka, config.KafkaOrderChangedTopic, c.metrics, logger))
	}
	c.publisher = publishers

	return c, nil
}

func (c *CompositionRoot) openStorage() error {
	switch c.config.Storage {
	case StorageMemory:
		store := memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(store)
		c.reader = memory.NewOrderReader(store)
		c.pinger = store
		return nil

	case StoragePostgres:
		db, err := gorm.Open(gorm_postgres.Open(c.config.DSN()), &gorm.Config{
			TranslateError: true,
			Logger:         gorm_logger.Default.LogMode(gorm_logger.Warn),
		})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		c.gormDB = db
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
		c.reader = orderrepo.NewGormOrderReader(db)
		c.pinger = postgres.NewPinger(db)
		return nil

	default:
		return fmt.Errorf("unknown storage %q", c.config.Storage)
	}
}

// Storage names the configured order store.
func (c *CompositionRoot) Storage() string { return c.config.Storage }

// RunBackground starts the cross-instance relay, if enabled, until ctx is done.
func (c *CompositionRoot) RunBackground(ctx context.Context) {
	if c.relay == nil {
		return
	}
	go c.relay.Run(ctx)
	go func() {
		if err := c.relay.Listen(ctx, c.config.DSN()); err != nil {
			c.logger.ErrorContext(ctx, "fanout relay listener stopped", "error", err)
		}
	}()
}

// Close ends every websocket subscription and releases external connections.
func (c *CompositionRoot) Close() {
	if c.hub != nil {
		c.hub.Close()
	}
	if c.kafka != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.kafka.Flush(flushCtx); err != nil {
			c.logger.Warn("kafka flush incomplete", "error", err)
		}
		cancel()
		c.kafka.Close()
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) agentUoWFactory() commands.AgentUoWFactory {
	return FuncAgentUoWFactory(func() commands.AgentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateOverrideOrderStatusCommandHandler() commands.OverrideOrderStatusCommandHandler {
	return commands.NewOverrideOrderStatusCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateRequestAssignmentCommandHandler() commands.RequestAssignmentCommandHandler {
	return commands.NewRequestAssignmentCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateAdvanceOrderStatusCommandHandler() commands.AdvanceOrderStatusCommandHandler {
	return commands.NewAdvanceOrderStatusCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateDecideDeliveryRequestCommandHandler() commands.DecideDeliveryRequestCommandHandler {
	return commands.NewDecideDeliveryRequestCommandHandler(c.orderUoWFactory(), c.publisher)
}

func (c *CompositionRoot) CreateRegisterAgentCommandHandler() commands.RegisterAgentCommandHandler {
	return commands.NewRegisterAgentCommandHandler(c.agentUoWFactory(), c.hasher)
}

func (c *CompositionRoot) CreateAgentLoginCommandHandler() commands.AgentLoginCommandHandler {
	return commands.NewAgentLoginCommandHandler(c.agentUoWFactory(), c.hasher, c.tokens)
}

func (c *CompositionRoot) CreateAdminLoginCommandHandler() commands.AdminLoginCommandHandler {
	return commands.NewAdminLoginCommandHandler(commands.AdminCredentials{
		Email:    c.config.AdminEmail,
		Password: c.config.AdminPassword,
	}, c.tokens)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateListAgentOrdersQueryHandler() queries.ListAgentOrdersQueryHandler {
	return queries.NewListAgentOrdersQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateListCustomerOrdersQueryHandler() queries.ListCustomerOrdersQueryHandler {
	return queries.NewListCustomerOrdersQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateGetOrderStatsQueryHandler() queries.GetOrderStatsQueryHandler {
	return queries.NewGetOrderStatsQueryHandler(c.reader)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateGetOrderStatsQueryHandler(), c.metrics, c.config.StatsSchedule, c.logger)
}

// CreateWebSocketHandler serves the hub on /ws.
func (c *CompositionRoot) CreateWebSocketHandler() http.Handler {
	return ws.NewHandler(c.hub, c.tokens, ws.Config{}, c.logger)
}

// CreateHTTPServer builds the echo instance with every route mounted.
func (c *CompositionRoot) CreateHTTPServer() (*echo.Echo, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	if c.reader == nil {
		return nil, errors.New("storage is not open")
	}

	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:         c.CreateCreateOrderCommandHandler(),
		OverrideOrderStatus: c.CreateOverrideOrderStatusCommandHandler(),
		RequestAssignment:   c.CreateRequestAssignmentCommandHandler(),
		AcceptOrder:         c.CreateAcceptOrderCommandHandler(),
		AdvanceOrderStatus:  c.CreateAdvanceOrderStatusCommandHandler(),
		DecideRequest:       c.CreateDecideDeliveryRequestCommandHandler(),
		RegisterAgent:       c.CreateRegisterAgentCommandHandler(),
		AgentLogin:          c.CreateAgentLoginCommandHandler(),
		AdminLogin:          c.CreateAdminLoginCommandHandler(),
		ListOrders:          c.CreateListOrdersQueryHandler(),
		GetOrder:            c.CreateGetOrderQueryHandler(),
		ListAgentOrders:     c.CreateListAgentOrdersQueryHandler(),
		ListCustomerOrders:  c.CreateListCustomerOrdersQueryHandler(),
	}, c.pinger, c.startedAt)

	return httpadapter.NewRouter(server, httpadapter.RouterConfig{
		Verifier:  c.tokens,
		Document:  doc,
		Gatherer:  c.registry,
		Observer:  c.metrics,
		WebSocket: c.CreateWebSocketHandler(),
		Logger:    c.logger,
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAgentUoWFactory func() commands.AgentUoW

func (f FuncAgentUoWFactory) Create() commands.AgentUoW {
	return f()
}
