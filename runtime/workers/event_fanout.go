package workers

import (
	"context"
	"log/slog"
	"time"

	"comms-hub/contract"
	"comms-hub/domain/event"
	"comms-hub/observability"
)

// EventFanout broadcasts domain events to the in-process sinks (archive,
// search index).
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// It exists so side effects never sit on the write path: a slow disk or
// index can delay archiving, not a caller's response.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
	monitoring  *observability.Monitor
}

func NewEventFanout(log *slog.Logger, bufferSize int, sinkTimeout time.Duration,
	monitoring *observability.Monitor) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
		monitoring:  monitoring,
	}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

// Publish hands an event to the fan-out loop without blocking the
// caller. A full buffer drops the event and counts it.
func (w *EventFanout) Publish(e event.DomainEvent) {
	select {
	case w.events <- e:
	default:
		w.log.Warn("Event buffer full, dropping event", "incidentId", e.Incident())
		w.monitoring.IncrEventsDropped()
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case e := <-w.events:
			w.fanout(ctx, e)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// fanout delivers one event to each sink under its own deadline so a
// stuck sink cannot stall the others indefinitely.
func (w *EventFanout) fanout(ctx context.Context, e event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			w.log.Warn("Sink failed to consume event", "incidentId", e.Incident(), "err", err)
		}
		cancel()
	}
}
