// Package domain contains core concepts of the communication pipeline.
// This file defines Message records and the closed sender/channel enums.
// Messages are immutable once logged, except for the Read flag.
package domain

import (
	"time"

	"comms-hub/errors"

	"github.com/google/uuid"
)

// SenderType is the role of a message's author. It is a closed enumeration:
// any other value must be rejected at the validation boundary.
type SenderType string

const (
	Responder  SenderType = "responder"
	Dispatcher SenderType = "dispatcher"
	Citizen    SenderType = "citizen"
)

// Channel is the delivery medium of a message.
type Channel string

const (
	Voice        Channel = "voice"
	Text         Channel = "text"
	Notification Channel = "notification"
)

// ParseSenderType maps a wire string to its typed value.
func ParseSenderType(s string) (SenderType, error) {
	switch SenderType(s) {
	case Responder, Dispatcher, Citizen:
		return SenderType(s), nil
	}
	return "", errors.ErrUnknownSenderType
}

// ParseChannel maps a wire string to its typed value.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case Voice, Text, Notification:
		return Channel(s), nil
	}
	return "", errors.ErrUnknownChannel
}

func (s SenderType) Validate() error {
	_, err := ParseSenderType(string(s))
	return err
}

func (c Channel) Validate() error {
	_, err := ParseChannel(string(c))
	return err
}

// Message is one entry of the communication log.
// ID and CreatedAt are assigned by the store, never trusted from callers.
// Language is the detected language of the body, empty when detection
// was not reliable enough to act on.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	IncidentID string     `json:"incidentId"`
	Body       string     `json:"message"`
	Sender     string     `json:"sender"`
	SenderType SenderType `json:"senderType"`
	Channel    Channel    `json:"type"`
	Language   string     `json:"language,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Read       bool       `json:"read"`
}

// Filter selects messages on the read side. Zero-valued fields match
// everything; set fields are combined as a conjunction.
type Filter struct {
	IncidentID string
	Channel    Channel
}

func (f Filter) Match(m Message) bool {
	if f.IncidentID != "" && m.IncidentID != f.IncidentID {
		return false
	}
	if f.Channel != "" && m.Channel != f.Channel {
		return false
	}
	return true
}
