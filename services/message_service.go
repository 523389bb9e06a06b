package services

import (
	"flockr/domain"
	"flockr/errors"
	"flockr/repositories"
	"flockr/runtime"
	"flockr/search"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

type IMessageService interface {
	Send(token domain.Token, channelID domain.ChannelID, content string) (domain.MessageID, error)
	SendLater(token domain.Token, channelID domain.ChannelID, content string, at time.Time) (domain.MessageID, error)
	Messages(token domain.Token, channelID domain.ChannelID, start int) (domain.MessagePage, error)
	Edit(token domain.Token, messageID domain.MessageID, content string) error
	Remove(token domain.Token, messageID domain.MessageID) error
	React(token domain.Token, messageID domain.MessageID, reactID domain.ReactID) error
	Unreact(token domain.Token, messageID domain.MessageID, reactID domain.ReactID) error
	Pin(token domain.Token, messageID domain.MessageID) error
	Unpin(token domain.Token, messageID domain.MessageID) error
	Search(token domain.Token, query string) ([]domain.Message, error)
}

type MessageConfig struct {
	MaxLength int
	PageSize  int
}

type MessageService struct {
	mu        *sync.Mutex
	messages  repositories.IMessageRepository
	channels  repositories.IChannelRepository
	users     repositories.IUserRepository
	sessions  ISessionService
	scheduler *runtime.Scheduler
	config    MessageConfig
	// epoch changes on every reset so deliveries scheduled before it are dropped.
	epoch uint64
	log   *slog.Logger
}

func NewMessageService(mu *sync.Mutex, messages repositories.IMessageRepository, channels repositories.IChannelRepository,
	users repositories.IUserRepository, sessions ISessionService, scheduler *runtime.Scheduler,
	config MessageConfig, log *slog.Logger) *MessageService {
	return &MessageService{
		mu:        mu,
		messages:  messages,
		channels:  channels,
		users:     users,
		sessions:  sessions,
		scheduler: scheduler,
		config:    config,
		log:       log,
	}
}

func (s *MessageService) Send(token domain.Token, channelID domain.ChannelID, content string) (domain.MessageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.authorizeSend(token, channelID, content)
	if err != nil {
		return 0, err
	}
	return s.store(channelID, userID, content, time.Now().UTC(), false)
}

// SendLater stores a pending message delivered at the given time. Pending
// messages are invisible until delivered.
func (s *MessageService) SendLater(token domain.Token, channelID domain.ChannelID, content string, at time.Time) (domain.MessageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.authorizeSend(token, channelID, content)
	if err != nil {
		return 0, err
	}
	if at.Before(time.Now().Truncate(time.Second)) {
		return 0, errors.ErrSendTimeInPast
	}
	id, err := s.store(channelID, userID, content, at.UTC(), true)
	if err != nil {
		return 0, err
	}
	epoch := s.epoch
	s.scheduler.Schedule(id, at, func() { s.deliver(epoch, id) })
	return id, nil
}

func (s *MessageService) authorizeSend(token domain.Token, channelID domain.ChannelID, content string) (domain.UserID, error) {
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return 0, err
	}
	channel, err := s.channel(channelID)
	if err != nil {
		return 0, err
	}
	if !channel.IsMember(userID) {
		return 0, errors.ErrNotChannelMember
	}
	if err = s.validateContent(content); err != nil {
		return 0, err
	}
	return userID, nil
}

func (s *MessageService) validateContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length == 0 {
		return errors.Input("message has no contents")
	}
	if length > s.config.MaxLength {
		return errors.Input("message exceeds the %d character limit", s.config.MaxLength)
	}
	return nil
}

func (s *MessageService) store(channelID domain.ChannelID, userID domain.UserID, content string,
	at time.Time, pending bool) (domain.MessageID, error) {
	id, err := s.messages.NextID()
	if err != nil {
		return 0, err
	}
	message := &domain.Message{
		ID:        id,
		ChannelID: channelID,
		SenderID:  userID,
		Content:   content,
		CreatedAt: at,
		Pending:   pending,
	}
	if err = s.messages.Save(message); err != nil {
		return 0, err
	}
	s.log.Debug("Message stored", "message_id", id, "channel_id", channelID, "user_id", userID, "pending", pending)
	return id, nil
}

// deliver publishes a pending message. Messages whose channel disappeared
// meanwhile are dropped.
func (s *MessageService) deliver(epoch uint64, id domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	message, err := s.messages.Get(id)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Error("Unable to read scheduled message", "message_id", id, "err", err)
		}
		return
	}
	if !message.Pending {
		return
	}
	if _, err = s.channels.Get(message.ChannelID); errors.Is(err, errors.ErrNotFound) {
		if err = s.messages.Delete(id); err != nil {
			s.log.Error("Unable to drop scheduled message", "message_id", id, "err", err)
		}
		s.log.Info("Scheduled message dropped", "message_id", id, "channel_id", message.ChannelID)
		return
	} else if err != nil {
		s.log.Error("Unable to read channel", "channel_id", message.ChannelID, "err", err)
		return
	}

	message.Pending = false
	if err = s.messages.Save(message); err != nil {
		s.log.Error("Unable to deliver scheduled message", "message_id", id, "err", err)
		return
	}
	s.log.Info("Scheduled message delivered", "message_id", id, "channel_id", message.ChannelID)
}

// Messages returns one page of the channel history, newest first.
func (s *MessageService) Messages(token domain.Token, channelID domain.ChannelID, start int) (domain.MessagePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return domain.MessagePage{}, err
	}
	channel, err := s.channel(channelID)
	if err != nil {
		return domain.MessagePage{}, err
	}
	if !channel.IsMember(userID) {
		return domain.MessagePage{}, errors.ErrNotChannelMember
	}
	visible, err := s.delivered(channelID)
	if err != nil {
		return domain.MessagePage{}, err
	}
	if start < 0 || start > len(visible) {
		return domain.MessagePage{}, errors.ErrStartOutOfRange
	}

	end := start + s.config.PageSize
	page := domain.MessagePage{Start: start, End: end}
	if end >= len(visible) {
		end = len(visible)
		page.End = -1
	}
	page.Messages = visible[start:end]
	return page, nil
}

func (s *MessageService) delivered(channelID domain.ChannelID) ([]domain.Message, error) {
	messages, err := s.messages.ListByChannel(channelID)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(messages, func(m *domain.Message, _ int) (domain.Message, bool) {
		return *m, !m.Pending
	}), nil
}

// Edit replaces the content of a message. Empty content removes it.
func (s *MessageService) Edit(token domain.Token, messageID domain.MessageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, err := s.authorizeModify(token, messageID)
	if err != nil {
		return err
	}
	if content == "" {
		return s.remove(message)
	}
	if err = s.validateContent(content); err != nil {
		return err
	}
	message.Content = content
	if err = s.messages.Save(message); err != nil {
		return err
	}
	s.log.Debug("Message edited", "message_id", messageID)
	return nil
}

func (s *MessageService) Remove(token domain.Token, messageID domain.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, err := s.authorizeModify(token, messageID)
	if err != nil {
		return err
	}
	return s.remove(message)
}

func (s *MessageService) remove(message *domain.Message) error {
	if err := s.messages.Delete(message.ID); err != nil {
		return err
	}
	s.log.Debug("Message removed", "message_id", message.ID, "channel_id", message.ChannelID)
	return nil
}

// authorizeModify lets the sender, a channel owner or a global owner change
// a delivered message, as long as the caller is still in its channel.
func (s *MessageService) authorizeModify(token domain.Token, messageID domain.MessageID) (*domain.Message, error) {
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	message, channel, err := s.messageInChannel(messageID)
	if err != nil {
		return nil, err
	}
	if !channel.IsMember(userID) {
		return nil, errors.ErrNotChannelMember
	}
	if message.SenderID == userID || channel.IsOwner(userID) {
		return message, nil
	}
	isOwner, err := s.isGlobalOwner(userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, errors.ErrNotMessageAuthor
	}
	return message, nil
}

func (s *MessageService) React(token domain.Token, messageID domain.MessageID, reactID domain.ReactID) error {
	return s.react(token, messageID, reactID, true)
}

func (s *MessageService) Unreact(token domain.Token, messageID domain.MessageID, reactID domain.ReactID) error {
	return s.react(token, messageID, reactID, false)
}

func (s *MessageService) react(token domain.Token, messageID domain.MessageID, reactID domain.ReactID, add bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	message, channel, err := s.messageInChannel(messageID)
	if err != nil {
		return err
	}
	if !channel.IsMember(userID) {
		return errors.Input("user must be a member of the channel to react to this message")
	}
	if !reactID.IsValid() {
		return errors.ErrInvalidReact
	}
	switch {
	case add && !message.React(reactID, userID):
		return errors.ErrAlreadyReacted
	case !add && !message.Unreact(reactID, userID):
		return errors.ErrNotReacted
	}
	return s.messages.Save(message)
}

func (s *MessageService) Pin(token domain.Token, messageID domain.MessageID) error {
	return s.pin(token, messageID, true)
}

func (s *MessageService) Unpin(token domain.Token, messageID domain.MessageID) error {
	return s.pin(token, messageID, false)
}

func (s *MessageService) pin(token domain.Token, messageID domain.MessageID, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	message, channel, err := s.messageInChannel(messageID)
	if err != nil {
		return err
	}
	if !channel.IsMember(userID) {
		return errors.ErrNotChannelMember
	}
	if !channel.IsOwner(userID) {
		isOwner, err := s.isGlobalOwner(userID)
		if err != nil {
			return err
		}
		if !isOwner {
			return errors.ErrNotChannelOwner
		}
	}
	switch {
	case pinned && message.IsPinned:
		return errors.ErrAlreadyPinned
	case !pinned && !message.IsPinned:
		return errors.ErrNotPinned
	}
	message.IsPinned = pinned
	return s.messages.Save(message)
}

// Search returns the delivered messages of the caller's channels whose
// content contains query, ignoring case. Channels come in id order, the
// messages of a channel newest first.
func (s *MessageService) Search(token domain.Token, query string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	matcher, err := search.NewMatcher(query)
	if err != nil {
		return nil, fmt.Errorf("building matcher failed: %w", err)
	}
	channels, err := s.channels.List()
	if err != nil {
		return nil, err
	}

	found := make([]domain.Message, 0)
	for _, channel := range channels {
		if !channel.IsMember(userID) {
			continue
		}
		messages, err := s.delivered(channel.ID)
		if err != nil {
			return nil, err
		}
		found = append(found, lo.Filter(messages, func(m domain.Message, _ int) bool {
			return matcher.Match(m.Content)
		})...)
	}
	return found, nil
}

// messageInChannel returns a delivered message and its channel.
func (s *MessageService) messageInChannel(id domain.MessageID) (*domain.Message, *domain.Channel, error) {
	message, err := s.messages.Get(id)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil, errors.ErrMessageNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if message.Pending {
		return nil, nil, errors.ErrMessagePending
	}
	channel, err := s.channels.Get(message.ChannelID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil, errors.ErrMessageNotFound
	}
	return message, channel, err
}

func (s *MessageService) channel(id domain.ChannelID) (*domain.Channel, error) {
	channel, err := s.channels.Get(id)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.ErrChannelNotFound
	}
	return channel, err
}

func (s *MessageService) isGlobalOwner(id domain.UserID) (bool, error) {
	user, err := s.users.Get(id)
	if err != nil {
		return false, err
	}
	return user.IsGlobalOwner(), nil
}

// reset drops every pending delivery. Callers hold the platform lock.
func (s *MessageService) reset() {
	s.scheduler.CancelAll()
	s.epoch++
}
