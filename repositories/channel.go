//go:generate go run go.uber.org/mock/mockgen -source=channel.go -destination=../mocks/mock_channel_repository.go -package=mocks
package repositories

import (
	"flockr/domain"
	"flockr/storage"
	"fmt"
	"log/slog"
)

const channelPrefix = "channel:"

type IChannelRepository interface {
	NextID() (domain.ChannelID, error)
	Get(id domain.ChannelID) (*domain.Channel, error)
	Save(channel *domain.Channel) error
	Delete(id domain.ChannelID) error
	List() ([]*domain.Channel, error)
}

type ChannelRepository struct {
	store *storage.Store
	log   *slog.Logger
}

func NewChannelRepository(store *storage.Store, log *slog.Logger) IChannelRepository {
	return &ChannelRepository{store: store, log: log}
}

// NextID draws from a counter so ids of deleted channels are never reused.
func (c ChannelRepository) NextID() (domain.ChannelID, error) {
	var id int
	err := c.store.Update(func(tx *storage.Tx) error {
		var err error
		id, err = tx.NextSequence("channel")
		return err
	})
	return domain.ChannelID(id), err
}

// Get returns errors.ErrNotFound for an unknown or deleted channel.
func (c ChannelRepository) Get(id domain.ChannelID) (*domain.Channel, error) {
	var channel domain.Channel
	if err := c.store.Get(storage.Key(channelPrefix, int(id)), &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c ChannelRepository) Save(channel *domain.Channel) error {
	if err := c.store.Set(storage.Key(channelPrefix, int(channel.ID)), channel); err != nil {
		return fmt.Errorf("storing channel %d failed: %w", channel.ID, err)
	}
	return nil
}

func (c ChannelRepository) Delete(id domain.ChannelID) error {
	return c.store.Update(func(tx *storage.Tx) error {
		return tx.Delete(storage.Key(channelPrefix, int(id)))
	})
}

// List returns every channel in id order.
func (c ChannelRepository) List() ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := c.store.View(func(tx *storage.Tx) error {
		return tx.Scan(channelPrefix, func(_ string, value []byte) error {
			var channel domain.Channel
			if err := storage.Unmarshal(value, &channel); err != nil {
				return err
			}
			channels = append(channels, &channel)
			return nil
		})
	})
	return channels, err
}
