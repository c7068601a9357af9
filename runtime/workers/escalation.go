package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"comms-hub/ai"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"comms-hub/observability"
	"comms-hub/store"
)

const (
	// DispatcherName is the sender identity of every generated reply.
	DispatcherName = "Dispatcher AI"

	systemInstruction = "You are a professional, concise dispatcher assistant " +
		"coordinating an emergency response. Keep replies short and actionable."
)

// EscalationWorker is the auto-responder dispatcher: it consumes
// escalation jobs enqueued by the write handler, calls the generation
// collaborator, and appends the reply as a new dispatcher message.
//
// The write path only ever touches Enqueue, which never blocks. The slow
// generation call happens here, outside any store lock, bounded by a
// timeout. Failures abandon the escalation: the triggering write has
// long since succeeded and must never learn about them.
type EscalationWorker struct {
	log        *slog.Logger
	jobs       chan domain.Message
	generator  ai.Generator
	commLog    *store.CommLog
	fanout     *EventFanout
	monitoring *observability.Monitor
	timeout    time.Duration
}

func NewEscalationWorker(log *slog.Logger, queueSize int, generator ai.Generator,
	commLog *store.CommLog, fanout *EventFanout, monitoring *observability.Monitor,
	timeout time.Duration) *EscalationWorker {
	return &EscalationWorker{
		log:        log,
		jobs:       make(chan domain.Message, queueSize),
		generator:  generator,
		commLog:    commLog,
		fanout:     fanout,
		monitoring: monitoring,
		timeout:    timeout,
	}
}

// Enqueue hands a triggering message to the worker without blocking.
// Escalation is best effort: when the queue is full the job is dropped
// with a warning and the write proceeds untouched.
func (w *EscalationWorker) Enqueue(trigger domain.Message) bool {
	select {
	case w.jobs <- trigger:
		return true
	default:
		w.log.Warn("Escalation queue full, dropping job", "messageId", trigger.ID)
		w.monitoring.IncrEscalationsFailed()
		return false
	}
}

// QueueDepth reports how many jobs are waiting, for the health endpoint.
func (w *EscalationWorker) QueueDepth() int {
	return len(w.jobs)
}

func (w *EscalationWorker) Run(ctx context.Context) error {
	for {
		select {
		case trigger := <-w.jobs:
			w.handle(ctx, trigger)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping escalation worker")
			return nil
		}
	}
}

func (w *EscalationWorker) handle(ctx context.Context, trigger domain.Message) {
	genCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	text, err := w.generator.Generate(genCtx, ai.Request{
		System: systemInstruction,
		Prompt: buildPrompt(trigger),
	})
	if err != nil {
		// Timeout and failure are the same outcome: escalation skipped,
		// recorded for operators, invisible to the original caller.
		w.log.Warn("Escalation skipped, generation failed",
			"messageId", trigger.ID, "incidentId", trigger.IncidentID, "err", err)
		w.monitoring.IncrEscalationsFailed()
		w.fanout.Publish(event.EscalationSkipped{Trigger: trigger, Reason: err.Error()})
		return
	}

	reply, err := w.commLog.Append(trigger.IncidentID, text, DispatcherName,
		domain.Dispatcher, domain.Text)
	if err != nil {
		w.log.Error("Failed to append dispatcher reply",
			"messageId", trigger.ID, "err", err)
		w.monitoring.IncrEscalationsFailed()
		return
	}

	w.monitoring.IncrMessagesLogged()
	w.monitoring.IncrEscalationsCompleted()
	w.fanout.Publish(event.MessageLogged{Message: reply})
	w.fanout.Publish(event.EscalationCompleted{Trigger: trigger, Reply: reply})
	w.log.Info("Escalation completed",
		"triggerId", trigger.ID, "replyId", reply.ID, "incidentId", trigger.IncidentID)
}

func buildPrompt(trigger domain.Message) string {
	prompt := fmt.Sprintf(
		"A responder on incident %s reported: %q. "+
			"Write a short dispatcher reply acknowledging the request and stating the next coordination step.",
		trigger.IncidentID, trigger.Body)
	if trigger.Language != "" {
		prompt += fmt.Sprintf(" Reply in the language tagged %q.", trigger.Language)
	}
	return prompt
}
