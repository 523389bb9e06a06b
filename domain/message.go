// Package domain contains core concepts of the chat system.
// This file defines Message records and related rules.
package domain

import (
	"time"

	"github.com/samber/lo"
)

type MessageID int

type ReactID int

// ReactThumbsUp is the only react the platform knows.
const ReactThumbsUp ReactID = 1

var validReacts = []ReactID{ReactThumbsUp}

func (r ReactID) IsValid() bool {
	return lo.Contains(validReacts, r)
}

// React lists the users that reacted with ReactID to a message.
type React struct {
	ReactID ReactID
	UserIDs []UserID
}

// Message is a chat message. Pending messages are scheduled for a later
// delivery and are invisible until delivered.
type Message struct {
	ID        MessageID
	ChannelID ChannelID
	SenderID  UserID
	Content   string
	CreatedAt time.Time
	Reacts    []React
	IsPinned  bool
	Pending   bool
}

func (m *Message) HasReacted(react ReactID, user UserID) bool {
	r, ok := lo.Find(m.Reacts, func(r React) bool { return r.ReactID == react })
	return ok && lo.Contains(r.UserIDs, user)
}

// React records user's react. It returns false when already recorded.
func (m *Message) React(react ReactID, user UserID) bool {
	if m.HasReacted(react, user) {
		return false
	}
	for i := range m.Reacts {
		if m.Reacts[i].ReactID == react {
			m.Reacts[i].UserIDs = append(m.Reacts[i].UserIDs, user)
			return true
		}
	}
	m.Reacts = append(m.Reacts, React{ReactID: react, UserIDs: []UserID{user}})
	return true
}

// Unreact removes user's react. It returns false when there was none.
func (m *Message) Unreact(react ReactID, user UserID) bool {
	if !m.HasReacted(react, user) {
		return false
	}
	for i := range m.Reacts {
		if m.Reacts[i].ReactID == react {
			m.Reacts[i].UserIDs = lo.Without(m.Reacts[i].UserIDs, user)
		}
	}
	m.Reacts = lo.Filter(m.Reacts, func(r React, _ int) bool { return len(r.UserIDs) > 0 })
	return true
}

// MessagePage is one page of a channel history, newest first. End is -1
// when the page reaches the oldest message.
type MessagePage struct {
	Messages []Message
	Start    int
	End      int
}
