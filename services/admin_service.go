package services

import (
	"flockr/domain"
	"flockr/errors"
	"flockr/repositories"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// IAdminService changes global permissions while keeping at least one
// global owner.
type IAdminService interface {
	ChangePermission(token domain.Token, targetID domain.UserID, permission domain.Permission) error
}

type AdminService struct {
	mu       *sync.Mutex
	users    repositories.IUserRepository
	sessions ISessionService
	log      *slog.Logger
}

func NewAdminService(mu *sync.Mutex, users repositories.IUserRepository, sessions ISessionService, log *slog.Logger) IAdminService {
	return &AdminService{mu: mu, users: users, sessions: sessions, log: log}
}

// ChangePermission is a silent no-op when the target already has the
// requested permission.
func (s *AdminService) ChangePermission(token domain.Token, targetID domain.UserID, permission domain.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return err
	}
	if !permission.IsValid() {
		return errors.ErrInvalidPermission
	}
	caller, err := s.users.Get(userID)
	if err != nil {
		return err
	}
	if !caller.IsGlobalOwner() {
		return errors.ErrNotGlobalOwner
	}
	target, err := s.users.Get(targetID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if target.Permission == permission {
		return nil
	}
	if targetID == userID {
		users, err := s.users.List()
		if err != nil {
			return err
		}
		if lo.CountBy(users, func(u domain.User) bool { return u.IsGlobalOwner() }) == 1 {
			return errors.ErrLastGlobalOwner
		}
	}

	target.Permission = permission
	if err = s.users.Update(target); err != nil {
		return err
	}
	s.log.Info("Global permission changed", "user_id", targetID, "permission", permission.String(), "by", userID)
	return nil
}
