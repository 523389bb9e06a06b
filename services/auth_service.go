package services

import (
	"flockr/auth"
	"flockr/domain"
	"flockr/errors"
	"flockr/repositories"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

type IAuthService interface {
	Register(email, password, firstName, lastName string) (domain.AuthResult, error)
	Login(email, password string) (domain.AuthResult, error)
	Logout(token domain.Token) bool
	RequestPasswordReset(email string) error
	ResetPassword(code, newPassword string) error
}

type AuthService struct {
	mu         *sync.Mutex
	users      repositories.IUserRepository
	resetCodes repositories.IResetCodeRepository
	sessions   ISessionService
	signer     *auth.Signer
	hasher     auth.PasswordHasher
	mailer     IMailer
	resetTTL   time.Duration
	log        *slog.Logger
}

func NewAuthService(mu *sync.Mutex, users repositories.IUserRepository, resetCodes repositories.IResetCodeRepository,
	sessions ISessionService, signer *auth.Signer, hasher auth.PasswordHasher, mailer IMailer,
	resetTTL time.Duration, log *slog.Logger) IAuthService {
	return &AuthService{
		mu:         mu,
		users:      users,
		resetCodes: resetCodes,
		sessions:   sessions,
		signer:     signer,
		hasher:     hasher,
		mailer:     mailer,
		resetTTL:   resetTTL,
		log:        log,
	}
}

func (s *AuthService) Register(email, password, firstName, lastName string) (domain.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Validate email format, password length and names
	// We check this before any expensive cryptographic operation.
	valReq := auth.RegisterRequest{Email: email, Password: password, FirstName: firstName, LastName: lastName}
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.AuthResult{}, err
	}
	taken, err := s.users.EmailTaken(email)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if taken {
		return domain.AuthResult{}, errors.ErrEmailTaken
	}

	// 2. The registry size is the new id; only the very first user owns the platform
	count, err := s.users.Count()
	if err != nil {
		return domain.AuthResult{}, err
	}
	id := domain.UserID(count)
	permission := domain.PermissionMember
	if id == 0 {
		permission = domain.PermissionOwner
	}

	handle, err := s.generateHandle(id, firstName, lastName)
	if err != nil {
		return domain.AuthResult{}, err
	}

	// 3. Hash the password using Argon2id
	hashedPassword, err := s.hasher.HashPassword(password)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 4. Persist the user, then open its first session
	user := domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Handle:       handle,
		Permission:   permission,
	}
	if err = s.users.Create(user); err != nil {
		return domain.AuthResult{}, err
	}
	token, err := s.sessions.Create(id)
	if err != nil {
		return domain.AuthResult{}, err
	}

	s.log.Info("User registered", "user_id", id, "handle", handle, "permission", permission.String())
	return domain.AuthResult{UserID: id, Token: token}, nil
}

func (s *AuthService) generateHandle(id domain.UserID, firstName, lastName string) (string, error) {
	var lookupErr error
	handle := domain.GenerateHandle(id, firstName, lastName, func(candidate string) bool {
		taken, err := s.users.HandleTaken(candidate)
		if err != nil {
			lookupErr = err
			return false
		}
		return taken
	})
	return handle, lookupErr
}

func (s *AuthService) Login(email, password string) (domain.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Retrieve user by email from storage
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, errors.ErrNotFound) {
		return domain.AuthResult{}, errors.ErrInvalidCredentials
	}
	if err != nil {
		return domain.AuthResult{}, err
	}

	// 2. Compare the provided password with the stored hash
	match, err := s.hasher.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.AuthResult{}, errors.ErrInvalidCredentials
	}

	// 3. One active session per login
	active, err := s.sessions.HasActiveSession(user.ID)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if active {
		return domain.AuthResult{}, errors.ErrAlreadyLoggedIn
	}

	token, err := s.sessions.Create(user.ID)
	if err != nil {
		return domain.AuthResult{}, err
	}
	s.log.Info("User logged in", "user_id", user.ID)
	return domain.AuthResult{UserID: user.ID, Token: token}, nil
}

// Logout never fails: an inactive token is reported with false.
func (s *AuthService) Logout(token domain.Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.sessions.Revoke(token)
	if ok {
		s.log.Info("User logged out")
	}
	return ok
}

// RequestPasswordReset issues a fresh 4-digit secret, replacing any earlier
// one, and mails it as a signed reset code.
func (s *AuthService) RequestPasswordReset(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.GetByEmail(email)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrUnknownEmail
	}
	if err != nil {
		return err
	}

	secret := 1000 + rand.IntN(9000)
	code, err := s.signer.GenerateResetCode(user.ID, secret, s.resetTTL)
	if err != nil {
		return fmt.Errorf("reset code generation failed: %w", err)
	}
	if err = s.resetCodes.Save(domain.ResetCode{UserID: user.ID, Secret: secret, IssuedAt: time.Now().UTC()}); err != nil {
		return err
	}
	if err = s.mailer.SendResetCode(user.Email, code); err != nil {
		return fmt.Errorf("sending reset code failed: %w", err)
	}
	s.log.Info("Password reset requested", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(code, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. The code must verify and hold the last secret issued to its user
	claims, err := s.signer.ValidateResetCode(code)
	if err != nil {
		s.log.Debug("Rejected reset code", "err", err)
		return errors.ErrInvalidResetCode
	}
	issued, err := s.resetCodes.Get(claims.UserID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrInvalidResetCode
	}
	if err != nil {
		return err
	}
	if issued.Secret != claims.Secret {
		return errors.ErrInvalidResetCode
	}

	// 2. The new password must be valid and different
	if err = auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.users.Get(claims.UserID)
	if errors.Is(err, errors.ErrNotFound) {
		return errors.ErrInvalidResetCode
	}
	if err != nil {
		return err
	}
	if same, _ := s.hasher.ComparePassword(newPassword, user.PasswordHash); same {
		return errors.ErrPasswordUnchanged
	}

	// 3. Store the new hash and burn the code
	if user.PasswordHash, err = s.hasher.HashPassword(newPassword); err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	if err = s.users.Update(user); err != nil {
		return err
	}
	if err = s.resetCodes.Delete(user.ID); err != nil {
		return err
	}
	s.log.Info("Password reset", "user_id", user.ID)
	return nil
}
