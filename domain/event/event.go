package event

import (
	"comms-hub/domain"
)

// DomainEvent is anything the pipeline broadcasts to its sinks
// (archive, search index, monitoring). Events are scoped by incident.
type DomainEvent interface {
	Incident() string
}

// MessageLogged is published after a message has been accepted by the store.
type MessageLogged struct {
	Message domain.Message
}

func (e MessageLogged) Incident() string {
	return e.Message.IncidentID
}

// EscalationCompleted is published when the auto-responder appended its
// reply to the log.
type EscalationCompleted struct {
	Trigger domain.Message
	Reply   domain.Message
}

func (e EscalationCompleted) Incident() string {
	return e.Trigger.IncidentID
}

// EscalationSkipped is published when the generation collaborator failed
// and the escalation was abandoned. The triggering write is unaffected.
type EscalationSkipped struct {
	Trigger domain.Message
	Reason  string
}

func (e EscalationSkipped) Incident() string {
	return e.Trigger.IncidentID
}
