package services

import (
	"flockr/auth"
	"flockr/domain"
	"flockr/errors"
	"flockr/repositories"
	"fmt"
	"log/slog"
	"time"
)

// ISessionService is the session manager. It takes no lock: callers run it
// inside their own critical section.
type ISessionService interface {
	Create(userID domain.UserID) (domain.Token, error)
	Resolve(token domain.Token) (domain.UserID, error)
	Revoke(token domain.Token) bool
	HasActiveSession(userID domain.UserID) (bool, error)
	Count() (int, error)
}

type SessionService struct {
	sessions repositories.ISessionRepository
	users    repositories.IUserRepository
	signer   *auth.Signer
	log      *slog.Logger
}

func NewSessionService(sessions repositories.ISessionRepository, users repositories.IUserRepository,
	signer *auth.Signer, log *slog.Logger) ISessionService {
	return &SessionService{sessions: sessions, users: users, signer: signer, log: log}
}

// Create mints a token for userID and adds it to the active set. Whether
// the user already has a session is not checked here.
func (s *SessionService) Create(userID domain.UserID) (domain.Token, error) {
	token, err := s.signer.GenerateSessionToken(userID)
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}
	session := domain.Session{Token: token, UserID: userID, IssuedAt: time.Now().UTC()}
	if err = s.sessions.Add(session); err != nil {
		return "", fmt.Errorf("storing session failed: %w", err)
	}
	return token, nil
}

// Resolve fails closed with errors.ErrInvalidToken unless the token is
// active, carries a valid signature and names an existing user.
func (s *SessionService) Resolve(token domain.Token) (domain.UserID, error) {
	if token == "" {
		return 0, errors.ErrInvalidToken
	}

	// 1. The token must be in the active set
	session, err := s.sessions.Get(token)
	if errors.Is(err, errors.ErrNotFound) {
		return 0, errors.ErrInvalidToken
	}
	if err != nil {
		return 0, fmt.Errorf("reading session failed: %w", err)
	}

	// 2. Its signature must verify against the process secret
	claims, err := s.signer.ValidateSessionToken(token)
	if err != nil || claims.UserID != session.UserID {
		s.log.Debug("Rejected session token", "err", err)
		return 0, errors.ErrInvalidToken
	}

	// 3. And it must name a registered user
	if _, err = s.users.Get(claims.UserID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return 0, errors.ErrInvalidToken
		}
		return 0, fmt.Errorf("reading user failed: %w", err)
	}
	return claims.UserID, nil
}

// Revoke removes an active token. It reports false when the token was not
// active or does not resolve to a user.
func (s *SessionService) Revoke(token domain.Token) bool {
	userID, err := s.Resolve(token)
	if err != nil {
		return false
	}
	if err = s.sessions.Remove(token); err != nil {
		s.log.Error("Unable to revoke session", "user_id", userID, "err", err)
		return false
	}
	return true
}

func (s *SessionService) HasActiveSession(userID domain.UserID) (bool, error) {
	sessions, err := s.sessions.List()
	if err != nil {
		return false, fmt.Errorf("listing sessions failed: %w", err)
	}
	for _, session := range sessions {
		if session.UserID != userID {
			continue
		}
		if resolved, err := s.Resolve(session.Token); err == nil && resolved == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SessionService) Count() (int, error) {
	sessions, err := s.sessions.List()
	return len(sessions), err
}
