package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"comms-hub/observability"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestEventFanout_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitor()
	fanout := NewEventFanout(slog.Default(), 16, time.Second, monitoring)

	first, second := &recordingSink{}, &recordingSink{}
	fanout.Add(first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	fanout.Publish(event.MessageLogged{Message: domain.Message{IncidentID: "incident-1"}})
	fanout.Publish(event.MessageLogged{Message: domain.Message{IncidentID: "incident-1"}})

	req.Eventually(func() bool {
		return first.count() == 2 && second.count() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEventFanout_FullBufferDropsWithoutBlocking(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitor()
	// Worker never started: a buffer of one fills on the first publish
	fanout := NewEventFanout(slog.Default(), 1, time.Second, monitoring)
	fanout.Add([]contract.EventSink{&recordingSink{}}...)

	done := make(chan struct{})
	go func() {
		fanout.Publish(event.MessageLogged{Message: domain.Message{IncidentID: "incident-1"}})
		fanout.Publish(event.MessageLogged{Message: domain.Message{IncidentID: "incident-1"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Publish must never block the caller")
	}
	req.Equal(uint64(1), monitoring.Snapshot().EventsDropped)
}
