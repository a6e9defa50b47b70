package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"chatline/domain"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetConversation(userA, userB string) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// ConversationKey canonicalizes a user pair so both directions of a
// conversation share one key prefix.
func ConversationKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

// StoreMessage persists a message under
// "msg:{pairKey}:{timestamp_padded}:{uuid}". The 19-digit zero padding
// makes a prefix scan return messages in chronological order; the UUID
// suffix disambiguates two messages landing on the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		ConversationKey(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetConversation returns the message history between two users, oldest
// first. When a limit is configured only the most recent messages are
// kept.
func (m MessageRepository) GetConversation(userA, userB string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:" + ConversationKey(userA, userB) + ":")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.limitMessages != nil && len(messages) > *m.limitMessages {
		m.log.Debug(fmt.Sprintf("Keeping the %d most recent messages", *m.limitMessages))
		messages = lo.Subset(messages, -*m.limitMessages, uint(*m.limitMessages))
	}
	return messages, nil
}
