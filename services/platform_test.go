package services

import (
	"flockr/domain"
	"flockr/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlatform_Reset(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	a := f.register(t, "alice")
	c := f.channel(t, a.Token, "general", true)
	_, err := f.Messages.Send(a.Token, c, "hello")
	req.NoError(err)
	_, err = f.Messages.SendLater(a.Token, c, "later", time.Now().Add(time.Hour))
	req.NoError(err)

	counts, err := f.Counts()
	req.NoError(err)
	req.Equal(Counts{Users: 1, Channels: 1, Sessions: 1, Messages: 1, PendingDeliveries: 1}, counts)

	req.NoError(f.Reset())

	counts, err = f.Counts()
	req.NoError(err)
	req.Equal(Counts{}, counts)

	_, err = f.Channels.ListAll(a.Token)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// counters restart at 0
	again := f.register(t, "bob")
	req.Equal(domain.UserID(0), again.UserID)
	req.Equal(domain.ChannelID(0), f.channel(t, again.Token, "fresh", true))
}

func TestPlatform_Snapshot(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	a := f.register(t, "alice")
	b := f.register(t, "bob")
	c := f.channel(t, a.Token, "general", true)
	req.NoError(f.Channels.Join(b.Token, c))

	snapshot, err := f.Snapshot()
	req.NoError(err)
	req.Len(snapshot.Users, 2)
	req.Equal("owner", snapshot.Users[0].Permission)
	req.Equal([]ChannelRow{{ID: 0, Name: "general", Public: true, Owners: []int{0}, Members: []int{0, 1}}}, snapshot.Channels)
}
