package escalation

import (
	"testing"

	"comms-hub/domain"

	"github.com/stretchr/testify/require"
)

func TestShouldEscalate(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(nil)
	req.NoError(err)

	tests := []struct {
		name       string
		senderType domain.SenderType
		body       string
		want       bool
	}{
		{"Responder asking for backup", domain.Responder, "I need backup", true},
		{"Responder all clear", domain.Responder, "all clear", false},
		{"Citizen asking for help is never escalated", domain.Citizen, "I need help", false},
		{"Dispatcher mentioning need is never escalated", domain.Dispatcher, "units need to regroup", false},
		{"Uppercase trigger", domain.Responder, "WE NEED AN AMBULANCE", true},
		{"Trigger inside a longer word", domain.Responder, "more units are needed", true},
		{"Empty body", domain.Responder, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.Message{SenderType: tt.senderType, Body: tt.body}
			require.Equal(t, tt.want, engine.ShouldEscalate(m))
		})
	}
}

func TestShouldEscalate_CustomTriggerVocabulary(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine([]string{"mayday", "officer down"})
	req.NoError(err)

	req.True(engine.ShouldEscalate(domain.Message{SenderType: domain.Responder, Body: "Mayday, we are pinned"}))
	req.True(engine.ShouldEscalate(domain.Message{SenderType: domain.Responder, Body: "OFFICER DOWN at pier 4"}))
	// The stock trigger is replaced, not extended
	req.False(engine.ShouldEscalate(domain.Message{SenderType: domain.Responder, Body: "I need backup"}))
}
