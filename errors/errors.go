// Package errors defines the two failure kinds every operation reports and
// the sentinel errors raised by the services.
//
// Every domain error is an *Error whose Kind is either ErrInput or ErrAccess.
// Callers match a kind with Is(err, ErrInput) or a specific failure with
// Is(err, ErrChannelNotFound).
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	// ErrInput marks a request whose data is invalid or refers to something
	// that does not exist.
	ErrInput = stderrors.New("input error")
	// ErrAccess marks an invalid session or a caller lacking the required
	// permission or membership.
	ErrAccess = stderrors.New("access error")
)

// Error is a domain failure of a given kind.
type Error struct {
	Kind        error
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Input builds an ad-hoc input error.
func Input(format string, args ...any) error {
	return &Error{Kind: ErrInput, Description: fmt.Sprintf(format, args...)}
}

// Access builds an ad-hoc access error.
func Access(format string, args ...any) error {
	return &Error{Kind: ErrAccess, Description: fmt.Sprintf(format, args...)}
}

func input(description string) *Error {
	return &Error{Kind: ErrInput, Description: description}
}

func access(description string) *Error {
	return &Error{Kind: ErrAccess, Description: description}
}

var (
	ErrInvalidToken       = access("invalid token")
	ErrNotChannelMember   = access("user is not a member of this channel")
	ErrNotChannelOwner    = access("user is not an owner of this channel")
	ErrNotGlobalOwner     = access("user is not a global owner")
	ErrPrivateChannel     = access("user is not authorised to join this channel")
	ErrAlreadyInvited     = access("invited user is already in the channel")
	ErrInviteeNotFound    = access("invited user does not exist")
	ErrNotMessageAuthor   = access("user may not modify this message")
	ErrChannelNotFound    = input("invalid channel id")
	ErrUserNotFound       = input("invalid user id")
	ErrMessageNotFound    = input("invalid message id")
	ErrMessagePending     = input("this message has not been sent yet")
	ErrAlreadyMember      = input("user is already in the channel")
	ErrTargetNotMember    = input("user is not in the channel")
	ErrAlreadyOwner       = input("user is already an owner")
	ErrTargetNotOwner     = input("user is not an owner")
	ErrLastChannelOwner   = input("channel must keep at least one owner")
	ErrLastGlobalOwner    = input("there must be at least one global owner at all times")
	ErrInvalidPermission  = input("invalid permission id")
	ErrInvalidCredentials = input("email and/or password are incorrect")
	ErrAlreadyLoggedIn    = input("this account is already logged in")
	ErrEmailTaken         = input("this email has already been used")
	ErrHandleTaken        = input("this handle has already been used")
	ErrUnknownEmail       = input("invalid email provided")
	ErrInvalidResetCode   = input("incorrect reset code provided")
	ErrPasswordUnchanged  = input("password cannot be the same as the old password")
	ErrInvalidReact       = input("invalid react id")
	ErrAlreadyReacted     = input("already reacted")
	ErrNotReacted         = input("cannot remove react")
	ErrAlreadyPinned      = input("this message has already been pinned")
	ErrNotPinned          = input("this message isn't pinned")
	ErrSendTimeInPast     = input("time sent cannot be in the past")
	ErrStartOutOfRange    = input("start is greater than the number of messages")
)

// ErrNotFound is returned by repositories when a key is absent. It carries
// no kind: services translate it into the matching domain error.
var ErrNotFound = stderrors.New("not found")

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// IsInput reports whether err is an input error.
func IsInput(err error) bool {
	return stderrors.Is(err, ErrInput)
}

// IsAccess reports whether err is an access error.
func IsAccess(err error) bool {
	return stderrors.Is(err, ErrAccess)
}

// HTTPStatus maps an error to the status code of the HTTP boundary. Both
// domain kinds collapse into 400.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInput(err), IsAccess(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
