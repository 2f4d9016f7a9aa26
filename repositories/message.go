//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	MarkRead(senderID, receiverID string, at time.Time) (int, error)
	Conversation(a, b string, cursor *string) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// messageDoc is the stored document shape for a message.
type messageDoc struct {
	ID        string     `json:"id"`
	Sender    string     `json:"sender"`
	Receiver  string     `json:"receiver"`
	Content   string     `json:"content"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// pairKey returns the lexicographically ordered id pair, so both directions
// of a conversation share one key prefix.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{pair}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (m MessageRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		pairKey(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// MarkRead flips every unread message from senderID to receiverID to read,
// stamping the read timestamp. Returns the number of updated documents;
// running it twice in a row updates zero on the second pass.
func (m MessageRepository) MarkRead(senderID, receiverID string, at time.Time) (int, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", pairKey(senderID, receiverID)))
	updated := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var doc messageDoc
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &doc)
			})
			if err != nil {
				return err
			}
			if doc.Sender != senderID || doc.Receiver != receiverID || doc.Read {
				continue
			}
			readAt := at
			doc.Read = true
			doc.ReadAt = &readAt
			bytes, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err = txn.Set(item.KeyCopy(nil), bytes); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// Conversation retrieves messages exchanged between a and b using a prefix
// scan, newest first. Thanks to the padded timestamp in the key, messages
// are naturally sorted by time. It stops collecting once the configured
// limitMessages is reached; the returned cursor resumes the scan, and is
// nil when the scan is exhausted.
func (m MessageRepository) Conversation(a, b string, cursor *string) ([]domain.Message, *string, error) {
	var docs []messageDoc
	var lastKey string
	var next *string
	prefixStr := fmt.Sprintf("msg:%s:", pairKey(a, b))
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(docs) == *m.limitMessages {
				// More entries remain past the limit, so the page has a
				// successor.
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				next = &lastKey
				break
			}
			item := it.Item()
			lastKey = strings.TrimPrefix(string(item.Key()), prefixStr)
			var doc messageDoc
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &doc)
			})
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		message, err := toMessage(doc)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, next, nil
}

func fromMessage(message domain.Message) messageDoc {
	return messageDoc{
		ID:        message.ID.String(),
		Sender:    message.SenderID,
		Receiver:  message.ReceiverID,
		Content:   message.Content,
		Read:      message.Read,
		ReadAt:    message.ReadAt,
		CreatedAt: message.CreatedAt.UTC(),
	}
}

func toMessage(doc messageDoc) (domain.Message, error) {
	parsedID, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   doc.Sender,
		ReceiverID: doc.Receiver,
		Content:    doc.Content,
		Read:       doc.Read,
		ReadAt:     doc.ReadAt,
		CreatedAt:  doc.CreatedAt.UTC(),
	}, nil
}
