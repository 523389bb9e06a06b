package services

import (
	"flockr/domain"
	"flockr/errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageService_SendAndPage(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, func(c *PlatformConfig) { c.MessagesPageSize = 3 })
	a := f.register(t, "alice")
	c := f.channel(t, a.Token, "general", true)

	page, err := f.Messages.Messages(a.Token, c, 0)
	req.NoError(err)
	req.Empty(page.Messages)
	req.Equal(-1, page.End)

	for i := 0; i < 5; i++ {
		_, err = f.Messages.Send(a.Token, c, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	page, err = f.Messages.Messages(a.Token, c, 0)
	req.NoError(err)
	req.Equal(3, page.End)
	req.Len(page.Messages, 3)
	req.Equal("message 4", page.Messages[0].Content, "newest first")

	page, err = f.Messages.Messages(a.Token, c, 3)
	req.NoError(err)
	req.Equal(-1, page.End)
	req.Equal([]string{"message 1", "message 0"}, []string{page.Messages[0].Content, page.Messages[1].Content})

	_, err = f.Messages.Messages(a.Token, c, 6)
	req.ErrorIs(err, errors.ErrStartOutOfRange)
}

func TestMessageService_SendChecks(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	c := f.channel(t, a.Token, "general", true)

	tests := []struct {
		name    string
		token   domain.Token
		channel domain.ChannelID
		content string
		want    error
	}{
		{"bad token", "bad-token", 99, "hi", errors.ErrInvalidToken},
		{"unknown channel", a.Token, 99, "hi", errors.ErrChannelNotFound},
		{"non member", b.Token, c, "hi", errors.ErrNotChannelMember},
		{"empty", a.Token, c, "", errors.ErrInput},
		{"too long", a.Token, c, strings.Repeat("x", 1001), errors.ErrInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Messages.Send(tt.token, tt.channel, tt.content)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMessageService_EditRemove(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, func(c *PlatformConfig) { c.PromoteChannelOwners = false })
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	carol := f.register(t, "carol")
	c := f.channel(t, b.Token, "general", true)
	req.NoError(f.Channels.Join(carol.Token, c))

	bobs, err := f.Messages.Send(b.Token, c, "from bob")
	req.NoError(err)
	carols, err := f.Messages.Send(carol.Token, c, "from carol")
	req.NoError(err)

	req.ErrorIs(f.Messages.Edit(carol.Token, bobs, "hijack"), errors.ErrNotMessageAuthor)
	req.ErrorIs(f.Messages.Edit(a.Token, bobs, "outsider"), errors.ErrNotChannelMember)
	req.NoError(f.Messages.Edit(carol.Token, carols, "edited"))
	req.NoError(f.Messages.Edit(b.Token, carols, "owner edit"), "channel owners edit anything")

	req.NoError(f.Channels.Join(a.Token, c))
	req.NoError(f.Messages.Remove(a.Token, bobs), "global owners remove anything")
	req.ErrorIs(f.Messages.Remove(a.Token, bobs), errors.ErrMessageNotFound)

	req.NoError(f.Messages.Edit(carol.Token, carols, ""), "empty content removes")
	page, err := f.Messages.Messages(b.Token, c, 0)
	req.NoError(err)
	req.Empty(page.Messages)
}

func TestMessageService_ReactPin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, func(c *PlatformConfig) { c.PromoteChannelOwners = false })
	f.register(t, "alice")
	b := f.register(t, "bob")
	carol := f.register(t, "carol")
	dave := f.register(t, "dave")
	c := f.channel(t, b.Token, "general", true)
	req.NoError(f.Channels.Join(carol.Token, c))

	id, err := f.Messages.Send(carol.Token, c, "react to me")
	req.NoError(err)

	req.NoError(f.Messages.React(carol.Token, id, domain.ReactThumbsUp))
	req.ErrorIs(f.Messages.React(carol.Token, id, domain.ReactThumbsUp), errors.ErrAlreadyReacted)
	req.NoError(f.Messages.React(b.Token, id, domain.ReactThumbsUp), "reacts are per user")
	req.ErrorIs(f.Messages.React(carol.Token, id, 2), errors.ErrInvalidReact)
	req.True(errors.IsInput(f.Messages.React(dave.Token, id, domain.ReactThumbsUp)))

	page, err := f.Messages.Messages(b.Token, c, 0)
	req.NoError(err)
	req.Equal([]domain.React{{ReactID: domain.ReactThumbsUp, UserIDs: []domain.UserID{carol.UserID, b.UserID}}}, page.Messages[0].Reacts)

	req.NoError(f.Messages.Unreact(carol.Token, id, domain.ReactThumbsUp))
	req.ErrorIs(f.Messages.Unreact(carol.Token, id, domain.ReactThumbsUp), errors.ErrNotReacted)

	req.ErrorIs(f.Messages.Pin(carol.Token, id), errors.ErrNotChannelOwner)
	req.ErrorIs(f.Messages.Pin(dave.Token, id), errors.ErrNotChannelMember)
	req.ErrorIs(f.Messages.Unpin(b.Token, id), errors.ErrNotPinned)
	req.NoError(f.Messages.Pin(b.Token, id))
	req.ErrorIs(f.Messages.Pin(b.Token, id), errors.ErrAlreadyPinned)
	req.NoError(f.Messages.Unpin(b.Token, id))

	req.ErrorIs(f.Messages.Pin(b.Token, 99), errors.ErrMessageNotFound)
}

func TestMessageService_SendLater(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	a := f.register(t, "alice")
	c := f.channel(t, a.Token, "general", true)

	_, err := f.Messages.SendLater(a.Token, c, "too late", time.Now().Add(-time.Hour))
	req.ErrorIs(err, errors.ErrSendTimeInPast)

	id, err := f.Messages.SendLater(a.Token, c, "soon", time.Now().Add(100*time.Millisecond))
	req.NoError(err)

	page, err := f.Messages.Messages(a.Token, c, 0)
	req.NoError(err)
	req.Empty(page.Messages, "pending messages are invisible")
	req.ErrorIs(f.Messages.Pin(a.Token, id), errors.ErrMessagePending)

	req.Eventually(func() bool {
		page, err := f.Messages.Messages(a.Token, c, 0)
		return err == nil && len(page.Messages) == 1 && page.Messages[0].ID == id
	}, 3*time.Second, 20*time.Millisecond)
}

func TestMessageService_SendLaterIntoDeletedChannel(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	a := f.register(t, "alice")
	c := f.channel(t, a.Token, "general", true)

	_, err := f.Messages.SendLater(a.Token, c, "never", time.Now().Add(50*time.Millisecond))
	req.NoError(err)
	req.NoError(f.Channels.Leave(a.Token, c))

	req.Eventually(func() bool { return f.scheduler.Pending() == 0 }, 3*time.Second, 20*time.Millisecond)
	count, err := f.msgRepo.Count()
	req.NoError(err)
	req.Zero(count)
}

func TestMessageService_Search(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	general := f.channel(t, a.Token, "general", true)
	random := f.channel(t, a.Token, "random", true)
	hidden := f.channel(t, b.Token, "hidden", true)

	for _, m := range []struct {
		token   domain.Token
		channel domain.ChannelID
		content string
	}{
		{a.Token, general, "Hello World"},
		{a.Token, random, "say hello"},
		{a.Token, general, "goodbye"},
		{b.Token, hidden, "hello from bob"},
		{a.Token, general, "HELLO again"},
	} {
		_, err := f.Messages.Send(m.token, m.channel, m.content)
		req.NoError(err)
	}
	_, err := f.Messages.SendLater(a.Token, general, "hello in the future", time.Now().Add(time.Hour))
	req.NoError(err)

	found, err := f.Messages.Search(a.Token, "hello")
	req.NoError(err)
	contents := make([]string, 0, len(found))
	for _, m := range found {
		contents = append(contents, m.Content)
	}
	req.Equal([]string{"HELLO again", "Hello World", "say hello"}, contents)

	_, err = f.Messages.Search("bad-token", "hello")
	req.ErrorIs(err, errors.ErrInvalidToken)
}
