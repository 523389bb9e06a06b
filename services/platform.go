package services

import (
	"flockr/auth"
	"flockr/domain"
	"flockr/repositories"
	"flockr/runtime"
	"flockr/storage"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type PlatformConfig struct {
	JWTSecret            string
	ResetCodeTTL         time.Duration
	PromoteChannelOwners bool
	MaxMessageLength     int
	MessagesPageSize     int
	ArgonMemoryKB        uint32
	ArgonIterations      uint32
}

// Platform wires every service over one store. All of them share a single
// lock, so no two operations interleave.
type Platform struct {
	Auth     IAuthService
	Users    IUserService
	Channels IChannelService
	Admin    IAdminService
	Messages IMessageService
	Sessions ISessionService

	mu        *sync.Mutex
	store     *storage.Store
	messages  *MessageService
	userRepo  repositories.IUserRepository
	chanRepo  repositories.IChannelRepository
	msgRepo   repositories.IMessageRepository
	scheduler *runtime.Scheduler
	log       *slog.Logger
}

func NewPlatform(store *storage.Store, config PlatformConfig, mailer IMailer, log *slog.Logger) *Platform {
	mu := &sync.Mutex{}
	signer := auth.NewSigner(config.JWTSecret)
	hasher := auth.NewPasswordHasher(config.ArgonMemoryKB, config.ArgonIterations)
	scheduler := runtime.NewScheduler(log)

	users := repositories.NewUserRepository(store, log)
	sessionRepo := repositories.NewSessionRepository(store, log)
	channels := repositories.NewChannelRepository(store, log)
	messages := repositories.NewMessageRepository(store, log)
	resetCodes := repositories.NewResetCodeRepository(store)

	sessions := NewSessionService(sessionRepo, users, signer, log)
	messageService := NewMessageService(mu, messages, channels, users, sessions, scheduler,
		MessageConfig{MaxLength: config.MaxMessageLength, PageSize: config.MessagesPageSize}, log)

	return &Platform{
		Auth:      NewAuthService(mu, users, resetCodes, sessions, signer, hasher, mailer, config.ResetCodeTTL, log),
		Users:     NewUserService(mu, users, sessions, log),
		Channels:  NewChannelService(mu, channels, users, messages, sessions, config.PromoteChannelOwners, log),
		Admin:     NewAdminService(mu, users, sessions, log),
		Messages:  messageService,
		Sessions:  sessions,
		mu:        mu,
		store:     store,
		messages:  messageService,
		userRepo:  users,
		chanRepo:  channels,
		msgRepo:   messages,
		scheduler: scheduler,
		log:       log,
	}
}

// Reset empties the whole platform in one step. Counters restart at 0 and
// scheduled deliveries are cancelled.
func (p *Platform) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages.reset()
	if err := p.store.Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	p.log.Info("Platform state cleared")
	return nil
}

// Identify resolves a session token under the platform lock.
func (p *Platform) Identify(token domain.Token) (domain.UserID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Sessions.Resolve(token)
}

// Counts is a snapshot of the platform size.
type Counts struct {
	Users             int
	Channels          int
	Sessions          int
	Messages          int
	PendingDeliveries int
}

func (p *Platform) Counts() (Counts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var counts Counts
	var err error
	if counts.Users, err = p.userRepo.Count(); err != nil {
		return Counts{}, err
	}
	channels, err := p.chanRepo.List()
	if err != nil {
		return Counts{}, err
	}
	counts.Channels = len(channels)
	if counts.Sessions, err = p.Sessions.Count(); err != nil {
		return Counts{}, err
	}
	if counts.Messages, err = p.msgRepo.Count(); err != nil {
		return Counts{}, err
	}
	counts.PendingDeliveries = p.scheduler.Pending()
	return counts, nil
}

// Snapshot is the full state used by the state dump.
type Snapshot struct {
	Users    []UserRow
	Channels []ChannelRow
}

type UserRow struct {
	ID         int
	Handle     string
	Email      string
	Name       string
	Permission string
}

type ChannelRow struct {
	ID      int
	Name    string
	Public  bool
	Owners  []int
	Members []int
}

func (p *Platform) Snapshot() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	users, err := p.userRepo.List()
	if err != nil {
		return Snapshot{}, err
	}
	channels, err := p.chanRepo.List()
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	for _, u := range users {
		snapshot.Users = append(snapshot.Users, UserRow{
			ID:         int(u.ID),
			Handle:     u.Handle,
			Email:      u.Email,
			Name:       u.FirstName + " " + u.LastName,
			Permission: u.Permission.String(),
		})
	}
	for _, c := range channels {
		row := ChannelRow{ID: int(c.ID), Name: c.Name, Public: c.IsPublic}
		for _, id := range c.OwnerMembers {
			row.Owners = append(row.Owners, int(id))
		}
		for _, id := range c.AllMembers {
			row.Members = append(row.Members, int(id))
		}
		snapshot.Channels = append(snapshot.Channels, row)
	}
	return snapshot, nil
}
