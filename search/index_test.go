package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"comms-hub/domain"
	"comms-hub/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func indexedMessage(body string) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		IncidentID: "incident-1",
		Body:       body,
		Sender:     "Alice",
		SenderType: domain.Responder,
		Channel:    domain.Text,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestIndex_AddAndSearch(t *testing.T) {
	req := require.New(t)
	idx, err := NewIndex("", slog.Default())
	req.NoError(err)
	defer idx.Close()

	ambulance := indexedMessage("requesting an ambulance at the north gate")
	ladder := indexedMessage("ladder truck is on site")
	req.NoError(idx.Add(ambulance))
	req.NoError(idx.Add(ladder))

	ids, err := idx.Search(context.Background(), "ambulance", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{ambulance.ID}, ids)

	ids, err = idx.Search(context.Background(), "helicopter", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestIndex_SearchHonoursLimit(t *testing.T) {
	req := require.New(t)
	idx, err := NewIndex("", slog.Default())
	req.NoError(err)
	defer idx.Close()

	for i := 0; i < 5; i++ {
		req.NoError(idx.Add(indexedMessage("hydrant pressure is low")))
	}

	ids, err := idx.Search(context.Background(), "hydrant", 2)
	req.NoError(err)
	req.Len(ids, 2)
}

func TestIndex_ConsumesMessageLoggedEvents(t *testing.T) {
	req := require.New(t)
	idx, err := NewIndex("", slog.Default())
	req.NoError(err)
	defer idx.Close()

	m := indexedMessage("evacuation complete on the east wing")
	req.NoError(idx.Consume(context.Background(), event.MessageLogged{Message: m}))

	ids, err := idx.Search(context.Background(), "evacuation", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{m.ID}, ids)
}
