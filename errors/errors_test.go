package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_KindMatching(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("leave: %w", ErrChannelNotFound)

	req.True(Is(wrapped, ErrChannelNotFound))
	req.True(IsInput(wrapped))
	req.False(IsAccess(wrapped))
	req.Equal("leave: invalid channel id", wrapped.Error())

	req.True(IsAccess(ErrInvalidToken))
	req.False(Is(ErrInvalidToken, ErrNotChannelMember))
}

func TestError_AdHocConstructors(t *testing.T) {
	req := require.New(t)

	err := Input("name %q is too long", "abc")
	req.True(IsInput(err))
	req.Equal(`name "abc" is too long`, err.Error())

	var domainErr *Error
	req.True(As(Access("nope"), &domainErr))
	req.Equal(ErrAccess, domainErr.Kind)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no error", nil, http.StatusOK},
		{"input error", ErrAlreadyMember, http.StatusBadRequest},
		{"access error", ErrInvalidToken, http.StatusBadRequest},
		{"storage failure", fmt.Errorf("badger: %w", fmt.Errorf("disk")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
