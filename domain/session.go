package domain

import "time"

// Token is an opaque session credential.
type Token string

func (t Token) String() string {
	return string(t)
}

// Session binds an active token to the user it was minted for.
type Session struct {
	Token    Token
	UserID   UserID
	IssuedAt time.Time
}

// AuthResult is returned by register and login.
type AuthResult struct {
	UserID UserID
	Token  Token
}

// ResetCode is the last password-reset secret issued to a user.
type ResetCode struct {
	UserID   UserID
	Secret   int
	IssuedAt time.Time
}
