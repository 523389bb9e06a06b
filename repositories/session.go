//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"flockr/domain"
	"flockr/errors"
	"flockr/storage"
	"log/slog"
)

const sessionPrefix = "session:"

// ISessionRepository is the active session set.
type ISessionRepository interface {
	Add(session domain.Session) error
	Get(token domain.Token) (domain.Session, error)
	Remove(token domain.Token) error
	List() ([]domain.Session, error)
}

type SessionRepository struct {
	store *storage.Store
	log   *slog.Logger
}

func NewSessionRepository(store *storage.Store, log *slog.Logger) ISessionRepository {
	return &SessionRepository{store: store, log: log}
}

func (s SessionRepository) Add(session domain.Session) error {
	return s.store.Set(sessionPrefix+session.Token.String(), session)
}

// Get returns errors.ErrNotFound when the token is not active.
func (s SessionRepository) Get(token domain.Token) (domain.Session, error) {
	var session domain.Session
	err := s.store.Get(sessionPrefix+token.String(), &session)
	return session, err
}

func (s SessionRepository) Remove(token domain.Token) error {
	return s.store.Update(func(tx *storage.Tx) error {
		key := sessionPrefix + token.String()
		found, err := tx.Exists(key)
		if err != nil {
			return err
		}
		if !found {
			return errors.ErrNotFound
		}
		return tx.Delete(key)
	})
}

func (s SessionRepository) List() ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.store.View(func(tx *storage.Tx) error {
		return tx.Scan(sessionPrefix, func(_ string, value []byte) error {
			var session domain.Session
			if err := storage.Unmarshal(value, &session); err != nil {
				return err
			}
			sessions = append(sessions, session)
			return nil
		})
	})
	return sessions, err
}
