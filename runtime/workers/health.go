package workers

import (
	"context"
	"log/slog"
	"time"

	"comms-hub/observability"
	"comms-hub/store"
)

// HealthWorker periodically logs a snapshot of the pipeline so operators
// can follow queue depths and escalation failures without polling the
// healthz endpoint.
type HealthWorker struct {
	log         *slog.Logger
	monitoring  *observability.Monitor
	commLog     *store.CommLog
	escalations *EscalationWorker
	interval    time.Duration
}

func NewHealthWorker(log *slog.Logger, monitoring *observability.Monitor,
	commLog *store.CommLog, escalations *EscalationWorker, interval time.Duration) *HealthWorker {
	return &HealthWorker{
		log:         log,
		monitoring:  monitoring,
		commLog:     commLog,
		escalations: escalations,
		interval:    interval,
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitoring.Snapshot()
			w.log.Info("Pipeline health",
				"messagesLogged", stats.MessagesLogged,
				"logSize", w.commLog.Len(),
				"escalationQueue", w.escalations.QueueDepth(),
				"escalationsCompleted", stats.EscalationsCompleted,
				"escalationsFailed", stats.EscalationsFailed,
				"eventsDropped", stats.EventsDropped,
				"goroutines", stats.NumGoroutine,
				"allocMemMb", stats.AllocMemMb,
				"cpuPercent", stats.CPUPercent,
			)
		}
	}
}
