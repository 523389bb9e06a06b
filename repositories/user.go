//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"flockr/domain"
	"flockr/errors"
	"flockr/storage"
	"fmt"
	"log/slog"
)

const (
	userPrefix       = "user:"
	userEmailPrefix  = "user-email:"
	userHandlePrefix = "user-handle:"
)

type IUserRepository interface {
	Count() (int, error)
	Create(user domain.User) error
	Update(user domain.User) error
	Get(id domain.UserID) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	EmailTaken(email string) (bool, error)
	HandleTaken(handle string) (bool, error)
	List() ([]domain.User, error)
}

// UserRepository stores users under their id and keeps two secondary
// indices, email and handle, pointing back to the id.
type UserRepository struct {
	store *storage.Store
	log   *slog.Logger
}

func NewUserRepository(store *storage.Store, log *slog.Logger) IUserRepository {
	return &UserRepository{store: store, log: log}
}

func (u UserRepository) Count() (int, error) {
	var n int
	err := u.store.View(func(tx *storage.Tx) error {
		var err error
		n, err = tx.Count(userPrefix)
		return err
	})
	return n, err
}

// Create persists a new user and its indices in one transaction.
// It refuses an email or handle that is already indexed.
func (u UserRepository) Create(user domain.User) error {
	return u.store.Update(func(tx *storage.Tx) error {
		taken, err := tx.Exists(userEmailPrefix + user.Email)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrEmailTaken
		}
		if taken, err = tx.Exists(userHandlePrefix + user.Handle); err != nil {
			return err
		}
		if taken {
			return errors.ErrHandleTaken
		}
		return writeUser(tx, user)
	})
}

// Update replaces a stored user, moving its index entries when the email
// or the handle changed.
func (u UserRepository) Update(user domain.User) error {
	return u.store.Update(func(tx *storage.Tx) error {
		var previous domain.User
		if err := tx.Get(storage.Key(userPrefix, int(user.ID)), &previous); err != nil {
			return err
		}
		if previous.Email != user.Email {
			if err := tx.Delete(userEmailPrefix + previous.Email); err != nil {
				return err
			}
		}
		if previous.Handle != user.Handle {
			if err := tx.Delete(userHandlePrefix + previous.Handle); err != nil {
				return err
			}
		}
		return writeUser(tx, user)
	})
}

func writeUser(tx *storage.Tx, user domain.User) error {
	if err := tx.Set(storage.Key(userPrefix, int(user.ID)), user); err != nil {
		return fmt.Errorf("storing user %d failed: %w", user.ID, err)
	}
	if err := tx.Set(userEmailPrefix+user.Email, user.ID); err != nil {
		return err
	}
	return tx.Set(userHandlePrefix+user.Handle, user.ID)
}

// Get returns errors.ErrNotFound for an unknown id.
func (u UserRepository) Get(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := u.store.Get(storage.Key(userPrefix, int(id)), &user)
	return user, err
}

func (u UserRepository) GetByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.store.View(func(tx *storage.Tx) error {
		var id domain.UserID
		if err := tx.Get(userEmailPrefix+email, &id); err != nil {
			return err
		}
		return tx.Get(storage.Key(userPrefix, int(id)), &user)
	})
	return user, err
}

func (u UserRepository) EmailTaken(email string) (bool, error) {
	return u.exists(userEmailPrefix + email)
}

func (u UserRepository) HandleTaken(handle string) (bool, error) {
	return u.exists(userHandlePrefix + handle)
}

func (u UserRepository) exists(key string) (bool, error) {
	var found bool
	err := u.store.View(func(tx *storage.Tx) error {
		var err error
		found, err = tx.Exists(key)
		return err
	})
	return found, err
}

// List returns every user in id order.
func (u UserRepository) List() ([]domain.User, error) {
	var users []domain.User
	err := u.store.View(func(tx *storage.Tx) error {
		return tx.Scan(userPrefix, func(_ string, value []byte) error {
			var user domain.User
			if err := storage.Unmarshal(value, &user); err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	return users, err
}
