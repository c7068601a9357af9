// Package repositories persists accepted messages outside the in-memory
// log. The archive is a mirror for retention and offline inspection, not
// the source of truth: the pipeline reads exclusively from the store.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"comms-hub/domain"
	"comms-hub/domain/event"

	"github.com/dgraph-io/badger/v4"
)

type IMessageArchive interface {
	Store(m domain.Message) error
	Messages(incidentID string, limit int) ([]domain.Message, error)
}

type MessageArchive struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageArchive(db *badger.DB, log *slog.Logger) MessageArchive {
	return MessageArchive{db: db, log: log}
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{incident_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages carry the same nanosecond.
func (a MessageArchive) Store(m domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		m.IncidentID,
		m.CreatedAt.UnixNano(),
		m.ID,
	)
	bytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Messages retrieves archived messages for one incident using a prefix
// scan. Thanks to the padded timestamp in the key, the reverse iterator
// yields them newest first. A limit of zero means no limit.
func (a MessageArchive) Messages(incidentID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := a.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", incidentID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp for this incident,
		// then walk backwards through the prefix.
		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				a.log.Debug(fmt.Sprintf("Maximum of %d archived messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var m domain.Message
				if err := json.Unmarshal(value, &m); err != nil {
					return err
				}
				messages = append(messages, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// Consume lets the archive act as an event sink behind the fan-out
// worker: every accepted message is mirrored to disk.
func (a MessageArchive) Consume(_ context.Context, e event.DomainEvent) error {
	if logged, ok := e.(event.MessageLogged); ok {
		return a.Store(logged.Message)
	}
	return nil
}
