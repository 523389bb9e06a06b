package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireChannelInvariants(t *testing.T, c *Channel) {
	t.Helper()
	req := require.New(t)
	for _, owner := range c.OwnerMembers {
		req.Contains(c.AllMembers, owner, "owner %d is not a member", owner)
	}
	if !c.IsEmpty() {
		req.NotEmpty(c.OwnerMembers, "non-empty channel without owner")
	}
}

func TestChannel_NewChannel_CreatorIsSoleMemberAndOwner(t *testing.T) {
	req := require.New(t)

	c := NewChannel(3, "general", true, 7)

	req.Equal(ChannelID(3), c.ID)
	req.Equal([]UserID{7}, c.AllMembers)
	req.Equal([]UserID{7}, c.OwnerMembers)
	requireChannelInvariants(t, c)
}

func TestChannel_AddMember_KeepsInsertionOrderWithoutDuplicates(t *testing.T) {
	req := require.New(t)
	c := NewChannel(0, "general", true, 0)

	c.AddMember(2, false)
	c.AddMember(1, true)
	c.AddMember(2, false)

	req.Equal([]UserID{0, 2, 1}, c.AllMembers)
	req.Equal([]UserID{0, 1}, c.OwnerMembers)
	requireChannelInvariants(t, c)
}

func TestChannel_AddOwner(t *testing.T) {
	req := require.New(t)
	c := NewChannel(0, "general", true, 0)
	c.AddMember(1, false)

	req.False(c.AddOwner(5), "non member cannot become owner")
	req.False(c.AddOwner(0), "already owner")
	req.True(c.AddOwner(1))
	req.Equal([]UserID{0, 1}, c.OwnerMembers)
}

func TestChannel_RemoveOwner_KeepsLastOwner(t *testing.T) {
	req := require.New(t)
	c := NewChannel(0, "general", true, 0)
	c.AddMember(1, true)

	req.True(c.RemoveOwner(0))
	req.False(c.RemoveOwner(1), "last owner stays")
	req.False(c.RemoveOwner(0), "not an owner anymore")
	req.Equal([]UserID{1}, c.OwnerMembers)
	requireChannelInvariants(t, c)
}

func TestChannel_Leave(t *testing.T) {
	tests := []struct {
		name          string
		build         func() *Channel
		leaving       UserID
		wantSuccessor UserID
		wantHandOff   bool
		wantMembers   []UserID
		wantOwners    []UserID
	}{
		{
			name: "sole owner hands off to first other member",
			build: func() *Channel {
				c := NewChannel(0, "c", true, 0)
				c.AddMember(1, false)
				c.AddMember(2, false)
				return c
			},
			leaving:       0,
			wantSuccessor: 1,
			wantHandOff:   true,
			wantMembers:   []UserID{1, 2},
			wantOwners:    []UserID{1},
		},
		{
			name: "sole owner joined later hands off to the first member",
			build: func() *Channel {
				c := NewChannel(0, "c", true, 0)
				c.AddMember(1, false)
				c.AddMember(2, true)
				c.RemoveOwner(0)
				return c
			},
			leaving:       2,
			wantSuccessor: 0,
			wantHandOff:   true,
			wantMembers:   []UserID{0, 1},
			wantOwners:    []UserID{0},
		},
		{
			name: "one of several owners leaves without hand-off",
			build: func() *Channel {
				c := NewChannel(0, "c", true, 0)
				c.AddMember(1, true)
				c.AddMember(2, false)
				return c
			},
			leaving:     0,
			wantMembers: []UserID{1, 2},
			wantOwners:  []UserID{1},
		},
		{
			name: "plain member leaves",
			build: func() *Channel {
				c := NewChannel(0, "c", true, 0)
				c.AddMember(1, false)
				return c
			},
			leaving:     1,
			wantMembers: []UserID{0},
			wantOwners:  []UserID{0},
		},
		{
			name:        "last member empties the channel",
			build:       func() *Channel { return NewChannel(0, "c", true, 0) },
			leaving:     0,
			wantMembers: []UserID{},
			wantOwners:  []UserID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			c := tt.build()

			successor, handedOff := c.Leave(tt.leaving)

			req.Equal(tt.wantHandOff, handedOff)
			if tt.wantHandOff {
				req.Equal(tt.wantSuccessor, successor)
			}
			req.ElementsMatch(tt.wantMembers, c.AllMembers)
			req.Equal(len(tt.wantMembers), len(c.AllMembers))
			req.ElementsMatch(tt.wantOwners, c.OwnerMembers)
			requireChannelInvariants(t, c)
		})
	}
}
