// Package search maintains a full-text index over logged message bodies
// so operators can find past traffic without scrolling the whole log.
package search

import (
	"context"
	"log/slog"

	"comms-hub/domain"
	"comms-hub/domain/event"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// NewIndex opens a Bluge index at the given path. An empty path keeps
// the whole index in memory, which is also what the tests use.
func NewIndex(path string, log *slog.Logger) (*Index, error) {
	config := bluge.InMemoryOnlyConfig()
	if path != "" {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Add indexes one message. Indexing is idempotent per message ID.
func (i *Index) Add(m domain.Message) error {
	doc := bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewTextField("body", m.Body)).
		AddField(bluge.NewKeywordField("incidentId", m.IncidentID)).
		AddField(bluge.NewKeywordField("sender", m.Sender))
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the IDs of the messages whose body matches the terms,
// best match first. Callers resolve IDs against the live store.
func (i *Index) Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewMatchQuery(terms).SetField("body")
	request := bluge.NewTopNSearch(limit, query)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, err := uuid.Parse(string(value)); err == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Consume lets the index act as an event sink behind the fan-out worker.
func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	if logged, ok := e.(event.MessageLogged); ok {
		return i.Add(logged.Message)
	}
	return nil
}
