package services

import (
	"flockr/auth"
	"flockr/domain"
	"flockr/errors"
	"flockr/repositories"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// IChannelService is the channel membership engine. Every operation runs
// its checks in a fixed order and the first failing check decides the error.
type IChannelService interface {
	Create(token domain.Token, name string, isPublic bool) (domain.ChannelID, error)
	Invite(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error
	Join(token domain.Token, channelID domain.ChannelID) error
	Leave(token domain.Token, channelID domain.ChannelID) error
	AddOwner(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error
	RemoveOwner(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error
	Details(token domain.Token, channelID domain.ChannelID) (domain.ChannelDetails, error)
	List(token domain.Token) ([]domain.ChannelSummary, error)
	ListAll(token domain.Token) ([]domain.ChannelSummary, error)
}

type ChannelService struct {
	mu       *sync.Mutex
	channels repositories.IChannelRepository
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	sessions ISessionService
	// promoteOwners makes every new channel owner a global owner too.
	promoteOwners bool
	log           *slog.Logger
}

func NewChannelService(mu *sync.Mutex, channels repositories.IChannelRepository, users repositories.IUserRepository,
	messages repositories.IMessageRepository, sessions ISessionService, promoteOwners bool, log *slog.Logger) IChannelService {
	return &ChannelService{
		mu:            mu,
		channels:      channels,
		users:         users,
		messages:      messages,
		sessions:      sessions,
		promoteOwners: promoteOwners,
		log:           log,
	}
}

func (s *ChannelService) Create(token domain.Token, name string, isPublic bool) (domain.ChannelID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := auth.ValidateChannelName(name); err != nil {
		return 0, err
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return 0, err
	}
	id, err := s.channels.NextID()
	if err != nil {
		return 0, err
	}
	if err = s.channels.Save(domain.NewChannel(id, name, isPublic, userID)); err != nil {
		return 0, err
	}
	s.log.Info("Channel created", "channel_id", id, "user_id", userID, "public", isPublic)
	return id, nil
}

func (s *ChannelService) Invite(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel, err := s.channel(channelID)
	if err != nil {
		return err
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	if !channel.IsMember(userID) {
		return errors.ErrNotChannelMember
	}
	if channel.IsMember(targetID) {
		return errors.ErrAlreadyInvited
	}
	target, err := s.users.Get(targetID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrInviteeNotFound
	}
	if err != nil {
		return err
	}
	if !channel.IsPublic && !target.IsGlobalOwner() {
		return errors.ErrPrivateChannel
	}

	channel.AddMember(targetID, target.IsGlobalOwner())
	if err = s.channels.Save(channel); err != nil {
		return err
	}
	s.log.Info("User invited", "channel_id", channelID, "user_id", targetID, "by", userID)
	return nil
}

func (s *ChannelService) Join(token domain.Token, channelID domain.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel, err := s.channel(channelID)
	if err != nil {
		return err
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	user, err := s.users.Get(userID)
	if err != nil {
		return err
	}
	if !channel.IsPublic && !user.IsGlobalOwner() {
		return errors.ErrPrivateChannel
	}
	if channel.IsMember(userID) {
		return errors.ErrAlreadyMember
	}

	channel.AddMember(userID, user.IsGlobalOwner())
	if err = s.channels.Save(channel); err != nil {
		return err
	}
	s.log.Info("User joined channel", "channel_id", channelID, "user_id", userID)
	return nil
}

// Leave removes the caller. A sole owner hands ownership to the first
// remaining member before leaving; the last member deletes the channel.
func (s *ChannelService) Leave(token domain.Token, channelID domain.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	channel, err := s.channel(channelID)
	if err != nil {
		return err
	}
	if !channel.IsMember(userID) {
		return errors.ErrNotChannelMember
	}

	if successor, handedOff := channel.Leave(userID); handedOff {
		s.log.Info("Channel ownership transferred", "channel_id", channelID, "from", userID, "to", successor)
	}
	if channel.IsEmpty() {
		if err = s.channels.Delete(channelID); err != nil {
			return err
		}
		if err = s.messages.DeleteByChannel(channelID); err != nil {
			return err
		}
		s.log.Info("Channel deleted", "channel_id", channelID)
		return nil
	}
	if err = s.channels.Save(channel); err != nil {
		return err
	}
	s.log.Info("User left channel", "channel_id", channelID, "user_id", userID)
	return nil
}

func (s *ChannelService) AddOwner(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel, err := s.channel(channelID)
	if err != nil {
		return err
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	caller, err := s.users.Get(userID)
	if err != nil {
		return err
	}
	if !caller.IsGlobalOwner() && !channel.IsOwner(userID) {
		return errors.ErrNotChannelOwner
	}
	target, err := s.users.Get(targetID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !channel.IsMember(targetID) {
		return errors.ErrTargetNotMember
	}
	if channel.IsOwner(targetID) {
		return errors.ErrAlreadyOwner
	}

	channel.AddOwner(targetID)
	if err = s.channels.Save(channel); err != nil {
		return err
	}
	if s.promoteOwners && !target.IsGlobalOwner() {
		target.Permission = domain.PermissionOwner
		if err = s.users.Update(target); err != nil {
			return err
		}
		s.log.Info("Channel owner promoted to global owner", "user_id", targetID)
	}
	s.log.Info("Channel owner added", "channel_id", channelID, "user_id", targetID, "by", userID)
	return nil
}

func (s *ChannelService) RemoveOwner(token domain.Token, channelID domain.ChannelID, targetID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel, err := s.channel(channelID)
	if err != nil {
		return err
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	if !channel.IsOwner(userID) {
		return errors.ErrNotChannelOwner
	}
	if _, err = s.users.Get(targetID); errors.Is(err, errors.ErrNotFound) {
		return errors.ErrUserNotFound
	} else if err != nil {
		return err
	}
	if !channel.IsMember(targetID) {
		return errors.ErrTargetNotMember
	}
	if !channel.IsOwner(targetID) {
		return errors.ErrTargetNotOwner
	}
	if !channel.RemoveOwner(targetID) {
		return errors.ErrLastChannelOwner
	}

	if err = s.channels.Save(channel); err != nil {
		return err
	}
	s.log.Info("Channel owner removed", "channel_id", channelID, "user_id", targetID, "by", userID)
	return nil
}

func (s *ChannelService) Details(token domain.Token, channelID domain.ChannelID) (domain.ChannelDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return domain.ChannelDetails{}, err
	}
	channel, err := s.channel(channelID)
	if err != nil {
		return domain.ChannelDetails{}, err
	}
	if !channel.IsMember(userID) {
		caller, err := s.users.Get(userID)
		if err != nil {
			return domain.ChannelDetails{}, err
		}
		if !caller.IsGlobalOwner() {
			return domain.ChannelDetails{}, errors.ErrNotChannelMember
		}
	}

	owners, err := s.memberViews(channel.OwnerMembers)
	if err != nil {
		return domain.ChannelDetails{}, err
	}
	members, err := s.memberViews(channel.AllMembers)
	if err != nil {
		return domain.ChannelDetails{}, err
	}
	return domain.ChannelDetails{Name: channel.Name, OwnerMembers: owners, AllMembers: members}, nil
}

func (s *ChannelService) memberViews(ids []domain.UserID) ([]domain.MemberView, error) {
	views := make([]domain.MemberView, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.Get(id)
		if err != nil {
			return nil, err
		}
		views = append(views, user.MemberView())
	}
	return views, nil
}

// List returns the channels the caller is a member of.
func (s *ChannelService) List(token domain.Token) ([]domain.ChannelSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	channels, err := s.channels.List()
	if err != nil {
		return nil, err
	}
	joined := lo.Filter(channels, func(c *domain.Channel, _ int) bool { return c.IsMember(userID) })
	return lo.Map(joined, func(c *domain.Channel, _ int) domain.ChannelSummary { return c.Summary() }), nil
}

// ListAll returns every channel, private ones included.
func (s *ChannelService) ListAll(token domain.Token) ([]domain.ChannelSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.Resolve(token); err != nil {
		return nil, err
	}
	channels, err := s.channels.List()
	if err != nil {
		return nil, err
	}
	return lo.Map(channels, func(c *domain.Channel, _ int) domain.ChannelSummary { return c.Summary() }), nil
}

func (s *ChannelService) channel(id domain.ChannelID) (*domain.Channel, error) {
	channel, err := s.channels.Get(id)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.ErrChannelNotFound
	}
	return channel, err
}
