// Package store owns the in-process communication log: an ordered,
// append-only sequence of messages shared by every request handler.
// All mutation goes through one writer lock; reads take snapshots so a
// query never observes a half-written entry.
package store

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"comms-hub/domain"
	"comms-hub/errors"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CommLog struct {
	mu       sync.RWMutex
	log      *slog.Logger
	messages []domain.Message
	lastAt   time.Time
	now      func() time.Time
}

func NewCommLog(log *slog.Logger) *CommLog {
	return &CommLog{log: log, now: time.Now}
}

// Append validates, stamps, and stores a new message, returning the
// stored value. CreatedAt is assigned here and is strictly increasing
// per store instance: a reply appended after its trigger is always
// strictly later, and insertion order can be recovered from timestamps.
func (s *CommLog) Append(incidentID, body, sender string, senderType domain.SenderType, channel domain.Channel) (domain.Message, error) {
	if err := senderType.Validate(); err != nil {
		return domain.Message{}, err
	}
	if err := channel.Validate(); err != nil {
		return domain.Message{}, err
	}
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, errors.ErrEmptyBody
	}

	// Language detection is pure CPU work, done before taking the lock.
	language := detectLanguage(body)

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	if !createdAt.After(s.lastAt) {
		createdAt = s.lastAt.Add(time.Nanosecond)
	}
	s.lastAt = createdAt

	m := domain.Message{
		ID:         uuid.New(),
		IncidentID: incidentID,
		Body:       body,
		Sender:     sender,
		SenderType: senderType,
		Channel:    channel,
		Language:   language,
		CreatedAt:  createdAt,
	}
	s.messages = append(s.messages, m)

	s.log.Debug("Message logged",
		"id", m.ID, "incidentId", m.IncidentID,
		"senderType", m.SenderType, "channel", m.Channel)
	return m, nil
}

// Query returns the messages matching the filter, most recent first,
// with ties broken by later insertion first. The returned total equals
// the filtered length. The result is a copy: callers cannot mutate the
// underlying sequence through it.
func (s *CommLog) Query(f domain.Filter) ([]domain.Message, int) {
	s.mu.RLock()
	snapshot := slices.Clone(s.messages)
	s.mu.RUnlock()

	// Reverse insertion order first so the stable sort keeps
	// later-inserted messages ahead on equal timestamps.
	matches := lo.Filter(lo.Reverse(snapshot), func(m domain.Message, _ int) bool {
		return f.Match(m)
	})
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, len(matches)
}

// Get looks a message up by ID.
func (s *CommLog) Get(id uuid.UUID) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			return s.messages[i], true
		}
	}
	return domain.Message{}, false
}

// MarkRead flips the Read flag, the only mutation allowed on a logged
// message.
func (s *CommLog) MarkRead(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Read = true
			return nil
		}
	}
	return errors.ErrMessageNotFound
}

// Len reports the total number of logged messages.
func (s *CommLog) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func detectLanguage(body string) string {
	info := whatlanggo.Detect(body)
	if !info.IsReliable() {
		return ""
	}
	return whatlanggo.LangToString(info.Lang)
}
