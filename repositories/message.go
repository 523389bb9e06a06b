//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"flockr/domain"
	"flockr/storage"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

const (
	messagePrefix        = "msg:"
	channelMessagePrefix = "channel-msg:"
)

type IMessageRepository interface {
	NextID() (domain.MessageID, error)
	Get(id domain.MessageID) (*domain.Message, error)
	Save(message *domain.Message) error
	Delete(id domain.MessageID) error
	DeleteByChannel(channelID domain.ChannelID) error
	ListByChannel(channelID domain.ChannelID) ([]*domain.Message, error)
	Count() (int, error)
}

type MessageRepository struct {
	store *storage.Store
	log   *slog.Logger
}

func NewMessageRepository(store *storage.Store, log *slog.Logger) IMessageRepository {
	return &MessageRepository{store: store, log: log}
}

func (m MessageRepository) NextID() (domain.MessageID, error) {
	var id int
	err := m.store.Update(func(tx *storage.Tx) error {
		var err error
		id, err = tx.NextSequence("message")
		return err
	})
	return domain.MessageID(id), err
}

func (m MessageRepository) Get(id domain.MessageID) (*domain.Message, error) {
	var message domain.Message
	if err := m.store.Get(storage.Key(messagePrefix, int(id)), &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Save persists a message under "msg:{id}" and indexes it under
// "channel-msg:{channel}:{id}", both zero padded, so a reverse prefix scan of
// the index yields the channel's messages newest first.
func (m MessageRepository) Save(message *domain.Message) error {
	return m.store.Update(func(tx *storage.Tx) error {
		if err := tx.Set(storage.Key(messagePrefix, int(message.ID)), message); err != nil {
			return fmt.Errorf("storing message %d failed: %w", message.ID, err)
		}
		return tx.Set(channelIndexKey(message.ChannelID, message.ID), message.ID)
	})
}

func (m MessageRepository) Delete(id domain.MessageID) error {
	return m.store.Update(func(tx *storage.Tx) error {
		var message domain.Message
		if err := tx.Get(storage.Key(messagePrefix, int(id)), &message); err != nil {
			return err
		}
		if err := tx.Delete(channelIndexKey(message.ChannelID, id)); err != nil {
			return err
		}
		return tx.Delete(storage.Key(messagePrefix, int(id)))
	})
}

// DeleteByChannel drops every message of a channel.
func (m MessageRepository) DeleteByChannel(channelID domain.ChannelID) error {
	return m.store.Update(func(tx *storage.Tx) error {
		var ids []domain.MessageID
		err := tx.Scan(channelIndexPrefix(channelID), func(_ string, value []byte) error {
			var id domain.MessageID
			if err := storage.Unmarshal(value, &id); err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err = tx.Delete(channelIndexKey(channelID, id)); err != nil {
				return err
			}
			if err = tx.Delete(storage.Key(messagePrefix, int(id))); err != nil {
				return err
			}
		}
		m.log.Debug("Channel messages dropped", "channel_id", channelID, "count", len(ids))
		return nil
	})
}

// ListByChannel returns the channel's messages, pending ones included,
// newest first.
func (m MessageRepository) ListByChannel(channelID domain.ChannelID) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := m.store.View(func(tx *storage.Tx) error {
		var ids []domain.MessageID
		err := tx.ScanReverse(channelIndexPrefix(channelID), func(_ string, value []byte) error {
			var id domain.MessageID
			if err := storage.Unmarshal(value, &id); err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return err
		}
		messages = make([]*domain.Message, 0, len(ids))
		for _, id := range ids {
			message := &domain.Message{}
			if err = tx.Get(storage.Key(messagePrefix, int(id)), message); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

// Count returns the number of delivered messages.
func (m MessageRepository) Count() (int, error) {
	var n int
	err := m.store.View(func(tx *storage.Tx) error {
		return tx.Scan(messagePrefix, func(_ string, value []byte) error {
			var message domain.Message
			if err := storage.Unmarshal(value, &message); err != nil {
				return err
			}
			n += lo.Ternary(message.Pending, 0, 1)
			return nil
		})
	})
	return n, err
}

func channelIndexPrefix(channelID domain.ChannelID) string {
	return storage.Key(channelMessagePrefix, int(channelID)) + ":"
}

func channelIndexKey(channelID domain.ChannelID, id domain.MessageID) string {
	return storage.Key(channelIndexPrefix(channelID), int(id))
}
