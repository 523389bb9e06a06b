//go:generate go run go.uber.org/mock/mockgen -source=reset_code.go -destination=../mocks/mock_reset_code_repository.go -package=mocks
package repositories

import (
	"flockr/domain"
	"flockr/storage"
)

const resetPrefix = "reset:"

// IResetCodeRepository keeps the last reset secret issued per user.
type IResetCodeRepository interface {
	Save(code domain.ResetCode) error
	Get(userID domain.UserID) (domain.ResetCode, error)
	Delete(userID domain.UserID) error
}

type ResetCodeRepository struct {
	store *storage.Store
}

func NewResetCodeRepository(store *storage.Store) IResetCodeRepository {
	return &ResetCodeRepository{store: store}
}

// Save replaces any previous code of the same user.
func (r ResetCodeRepository) Save(code domain.ResetCode) error {
	return r.store.Set(storage.Key(resetPrefix, int(code.UserID)), code)
}

func (r ResetCodeRepository) Get(userID domain.UserID) (domain.ResetCode, error) {
	var code domain.ResetCode
	err := r.store.Get(storage.Key(resetPrefix, int(userID)), &code)
	return code, err
}

func (r ResetCodeRepository) Delete(userID domain.UserID) error {
	return r.store.Update(func(tx *storage.Tx) error {
		return tx.Delete(storage.Key(resetPrefix, int(userID)))
	})
}
