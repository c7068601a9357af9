package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"comms-hub/ai"
	"comms-hub/domain"
	"comms-hub/observability"
	"comms-hub/store"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, ai.Request) (string, error) {
	return g.text, g.err
}

func newTestWorker(t *testing.T, generator ai.Generator) (*EscalationWorker, *store.CommLog, context.CancelFunc) {
	t.Helper()
	log := slog.Default()
	monitoring := observability.NewMonitor()
	commLog := store.NewCommLog(log)
	fanout := NewEventFanout(log, 16, time.Second, monitoring)
	worker := NewEscalationWorker(log, 4, generator, commLog, fanout, monitoring, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = worker.Run(ctx) }()
	return worker, commLog, cancel
}

func TestEscalation_AppendsDispatcherReply(t *testing.T) {
	req := require.New(t)
	worker, commLog, cancel := newTestWorker(t, stubGenerator{text: "Copy that, ambulance en route."})
	defer cancel()

	trigger, err := commLog.Append("incident-1", "I need an ambulance", "Alice", domain.Responder, domain.Voice)
	req.NoError(err)
	req.True(worker.Enqueue(trigger))

	req.Eventually(func() bool { return commLog.Len() == 2 }, time.Second, 10*time.Millisecond)

	logs, total := commLog.Query(domain.Filter{IncidentID: "incident-1"})
	req.Equal(2, total)

	// Most recent first: the generated reply precedes the trigger
	reply := logs[0]
	req.Equal(domain.Dispatcher, reply.SenderType)
	req.Equal(DispatcherName, reply.Sender)
	req.Equal(domain.Text, reply.Channel)
	req.Equal("Copy that, ambulance en route.", reply.Body)
	req.True(reply.CreatedAt.After(trigger.CreatedAt))
}

func TestEscalation_GenerationFailureLeavesLogUntouched(t *testing.T) {
	req := require.New(t)
	worker, commLog, cancel := newTestWorker(t, stubGenerator{err: fmt.Errorf("model unreachable")})
	defer cancel()

	trigger, err := commLog.Append("incident-1", "I need backup", "Alice", domain.Responder, domain.Text)
	req.NoError(err)
	req.True(worker.Enqueue(trigger))

	// Give the worker time to consume and fail the job
	req.Eventually(func() bool { return worker.QueueDepth() == 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	req.Equal(1, commLog.Len())
}

func TestEscalation_FullQueueDropsJob(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	monitoring := observability.NewMonitor()
	commLog := store.NewCommLog(log)
	fanout := NewEventFanout(log, 16, time.Second, monitoring)
	// Worker is never started: the queue of one fills immediately
	worker := NewEscalationWorker(log, 1, stubGenerator{text: "ok"}, commLog, fanout, monitoring, time.Second)

	trigger, err := commLog.Append("incident-1", "I need backup", "Alice", domain.Responder, domain.Text)
	req.NoError(err)

	req.True(worker.Enqueue(trigger))
	req.False(worker.Enqueue(trigger))
	req.Equal(1, worker.QueueDepth())
}
