package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_ReactAndUnreact(t *testing.T) {
	req := require.New(t)
	msg := Message{ID: 1, Content: "hello"}

	req.True(msg.React(ReactThumbsUp, 0))
	req.True(msg.React(ReactThumbsUp, 1))
	req.False(msg.React(ReactThumbsUp, 1), "duplicate react")
	req.True(msg.HasReacted(ReactThumbsUp, 0))
	req.Len(msg.Reacts, 1)
	req.Equal([]UserID{0, 1}, msg.Reacts[0].UserIDs)

	req.True(msg.Unreact(ReactThumbsUp, 0))
	req.False(msg.Unreact(ReactThumbsUp, 0))
	req.True(msg.Unreact(ReactThumbsUp, 1))
	req.Empty(msg.Reacts)
}

func TestReactID_IsValid(t *testing.T) {
	req := require.New(t)
	req.True(ReactThumbsUp.IsValid())
	req.False(ReactID(2).IsValid())
}

func TestPermission_IsValid(t *testing.T) {
	req := require.New(t)
	req.True(PermissionOwner.IsValid())
	req.True(PermissionMember.IsValid())
	req.False(Permission(0).IsValid())
	req.False(Permission(3).IsValid())
}
