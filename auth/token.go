package auth

import (
	"flockr/domain"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer         = "flockr"
	sessionSubject = "session"
	resetSubject   = "password-reset"
)

// Signer signs and verifies every token the platform hands out with one
// process-wide HMAC secret.
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

// SessionClaims identifies the user a session token was minted for. The
// token id makes every session token unique, even for the same user.
type SessionClaims struct {
	UserID domain.UserID `json:"user_id"`
	jwt.RegisteredClaims
}

// ResetClaims carries a password-reset secret for a user.
type ResetClaims struct {
	UserID domain.UserID `json:"u_id"`
	Secret int           `json:"secret_num"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed session token for a user. Session
// tokens do not expire: they live until logout.
func (s *Signer) GenerateSessionToken(userID domain.UserID) (domain.Token, error) {
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   issuer,
			Subject:  sessionSubject,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", err
	}
	return domain.Token(signed), nil
}

// ValidateSessionToken checks the signature of a session token and returns
// its claims. It says nothing about whether the session is still active.
func (s *Signer) ValidateSessionToken(token domain.Token) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(string(token), claims, sessionSubject); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateResetCode encodes a reset secret for a user, valid for ttl.
func (s *Signer) GenerateResetCode(userID domain.UserID, secret int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		UserID: userID,
		Secret: secret,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   resetSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Signer) ValidateResetCode(code string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(code, claims, resetSubject); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims, subject string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrSignatureInvalid
	}
	return nil
}
