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

type IUserService interface {
	Profile(token domain.Token, userID domain.UserID) (domain.UserProfile, error)
	SetName(token domain.Token, firstName, lastName string) error
	SetEmail(token domain.Token, email string) error
	SetHandle(token domain.Token, handle string) error
	All(token domain.Token) ([]domain.UserProfile, error)
}

type UserService struct {
	mu       *sync.Mutex
	users    repositories.IUserRepository
	sessions ISessionService
	log      *slog.Logger
}

func NewUserService(mu *sync.Mutex, users repositories.IUserRepository, sessions ISessionService, log *slog.Logger) IUserService {
	return &UserService{mu: mu, users: users, sessions: sessions, log: log}
}

func (s *UserService) Profile(token domain.Token, userID domain.UserID) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.Resolve(token); err != nil {
		return domain.UserProfile{}, err
	}
	user, err := s.users.Get(userID)
	if errors.Is(err, errors.ErrNotFound) {
		return domain.UserProfile{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, err
	}
	return user.Profile(), nil
}

func (s *UserService) SetName(token domain.Token, firstName, lastName string) error {
	return s.update(token, func(user *domain.User) error {
		if err := auth.ValidateName(firstName, lastName); err != nil {
			return err
		}
		user.FirstName, user.LastName = firstName, lastName
		return nil
	})
}

func (s *UserService) SetEmail(token domain.Token, email string) error {
	return s.update(token, func(user *domain.User) error {
		if err := auth.ValidateEmail(email); err != nil {
			return err
		}
		taken, err := s.users.EmailTaken(email)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrEmailTaken
		}
		user.Email = email
		return nil
	})
}

func (s *UserService) SetHandle(token domain.Token, handle string) error {
	return s.update(token, func(user *domain.User) error {
		if err := auth.ValidateHandle(handle); err != nil {
			return err
		}
		taken, err := s.users.HandleTaken(handle)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrHandleTaken
		}
		user.Handle = handle
		return nil
	})
}

// update resolves the caller, lets mutate validate and change its record,
// and stores it only when mutate succeeded.
func (s *UserService) update(token domain.Token, mutate func(user *domain.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	user, err := s.users.Get(userID)
	if err != nil {
		return err
	}
	if err = mutate(&user); err != nil {
		s.log.Debug("Profile update rejected", "user_id", userID, "err", err)
		return err
	}
	return s.users.Update(user)
}

func (s *UserService) All(token domain.Token) ([]domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.Resolve(token); err != nil {
		return nil, err
	}
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.UserProfile { return u.Profile() }), nil
}
