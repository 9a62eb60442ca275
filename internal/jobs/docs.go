// Package jobs provides scheduled background tasks for the dispatch service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// OrderStatsJob counts orders per lifecycle status and publishes the counts
// as the orders{status} gauge. It runs once at start and then on STATS_SCHEDULE
// (six-field cron syntax with seconds, "*/15 * * * * *" by default).
//
// # Usage
//
//	jobManager := jobs.NewJobManager(statsHandler, metrics, schedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed refresh is logged and the gauges keep their previous values.
// Failed job starts stop any already running jobs.
package jobs
