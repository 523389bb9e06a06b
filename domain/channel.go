// Package domain contains core concepts of the chat system.
// This file defines Channel membership and ownership rules.
// No storage, network, or session logic should be added here.
package domain

import "github.com/samber/lo"

type ChannelID int

// Channel keeps its member and owner lists in insertion order.
// OwnerMembers is always a subset of AllMembers.
type Channel struct {
	ID           ChannelID
	Name         string
	IsPublic     bool
	AllMembers   []UserID
	OwnerMembers []UserID
}

// NewChannel creates a channel whose creator is its only member and owner.
func NewChannel(id ChannelID, name string, isPublic bool, creator UserID) *Channel {
	return &Channel{
		ID:           id,
		Name:         name,
		IsPublic:     isPublic,
		AllMembers:   []UserID{creator},
		OwnerMembers: []UserID{creator},
	}
}

func (c *Channel) IsMember(id UserID) bool {
	return lo.Contains(c.AllMembers, id)
}

func (c *Channel) IsOwner(id UserID) bool {
	return lo.Contains(c.OwnerMembers, id)
}

// IsEmpty reports whether the channel lost its last member and must be deleted.
func (c *Channel) IsEmpty() bool {
	return len(c.AllMembers) == 0
}

// AddMember appends id to the members, and to the owners when asOwner is set.
// Adding an existing member is a no-op.
func (c *Channel) AddMember(id UserID, asOwner bool) {
	if !c.IsMember(id) {
		c.AllMembers = append(c.AllMembers, id)
	}
	if asOwner {
		c.AddOwner(id)
	}
}

// AddOwner promotes an existing member. It returns false when id is not a
// member or already an owner.
func (c *Channel) AddOwner(id UserID) bool {
	if !c.IsMember(id) || c.IsOwner(id) {
		return false
	}
	c.OwnerMembers = append(c.OwnerMembers, id)
	return true
}

// RemoveOwner demotes id unless it is the last owner.
func (c *Channel) RemoveOwner(id UserID) bool {
	if !c.IsOwner(id) || len(c.OwnerMembers) == 1 {
		return false
	}
	c.OwnerMembers = lo.Without(c.OwnerMembers, id)
	return true
}

// Successor returns the member that inherits ownership when leaving departs.
// It only names one when leaving is the sole owner and someone else remains:
// the first other member in join order, preferring a non-owner.
func (c *Channel) Successor(leaving UserID) (UserID, bool) {
	if !c.IsOwner(leaving) || len(c.OwnerMembers) != 1 || len(c.AllMembers) < 2 {
		return 0, false
	}
	others := lo.Without(c.AllMembers, leaving)
	if next, ok := lo.Find(others, func(id UserID) bool { return !c.IsOwner(id) }); ok {
		return next, true
	}
	return others[0], true
}

// Leave removes id from the channel, handing ownership to the successor
// first. It returns the new owner when a hand-off happened.
func (c *Channel) Leave(id UserID) (UserID, bool) {
	successor, handedOff := c.Successor(id)
	if handedOff {
		c.AddOwner(successor)
	}
	c.AllMembers = lo.Without(c.AllMembers, id)
	c.OwnerMembers = lo.Without(c.OwnerMembers, id)
	return successor, handedOff
}

// ChannelSummary is the listing view of a channel.
type ChannelSummary struct {
	ID   ChannelID
	Name string
}

func (c *Channel) Summary() ChannelSummary {
	return ChannelSummary{ID: c.ID, Name: c.Name}
}

// MemberView is a channel member expanded with its names.
type MemberView struct {
	UserID    UserID
	FirstName string
	LastName  string
}

type ChannelDetails struct {
	Name         string
	OwnerMembers []MemberView
	AllMembers   []MemberView
}
