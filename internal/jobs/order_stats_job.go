package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

// DefaultStatsSchedule refreshes the order gauges every fifteen seconds.
const DefaultStatsSchedule = "*/15 * * * * *"

// OrderStatsHandler is the query the job runs.
type OrderStatsHandler interface {
	Handle(ctx context.Context, query queries.GetOrderStatsQuery) (queries.GetOrderStatsQueryResponse, error)
}

// OrderCountsSink receives the counts, normally *metrics.Metrics.
type OrderCountsSink interface {
	SetOrderCounts(counts map[order.Status]int)
}

// OrderStatsJob periodically publishes the number of orders per status.
type OrderStatsJob struct {
	handler  OrderStatsHandler
	sink     OrderCountsSink
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOrderStatsJob creates the job. An empty schedule uses DefaultStatsSchedule.
func NewOrderStatsJob(handler OrderStatsHandler, sink OrderCountsSink, schedule string, logger *slog.Logger) *OrderStatsJob {
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	return &OrderStatsJob{
		handler:  handler,
		sink:     sink,
		schedule: schedule,
		timeout:  5 * time.Second,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "order_stats_job"),
	}
}

// Start refreshes once and then runs on the schedule.
func (j *OrderStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.Run()
	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order stats job started", "schedule", j.schedule)
	return nil
}

// Run performs one refresh.
func (j *OrderStatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	stats, err := j.handler.Handle(ctx, queries.NewGetOrderStatsQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Order stats job failed", "error", err)
		return
	}
	j.sink.SetOrderCounts(stats.ByStatus)
}

// Stop stops the scheduler and waits for a running refresh.
func (j *OrderStatsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Order stats job stopped")
}
