// Package domain contains core concepts of the chat system.
// This file defines User identities and global permissions.
package domain

type UserID int

// Permission is the global permission level of a user.
type Permission int

const (
	PermissionOwner  Permission = 1
	PermissionMember Permission = 2
)

func (p Permission) IsValid() bool {
	return p == PermissionOwner || p == PermissionMember
}

func (p Permission) String() string {
	switch p {
	case PermissionOwner:
		return "owner"
	case PermissionMember:
		return "member"
	default:
		return "unknown"
	}
}

// MaxHandleLength bounds generated handles.
const MaxHandleLength = 20

type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Handle       string
	Permission   Permission
}

func (u User) IsGlobalOwner() bool {
	return u.Permission == PermissionOwner
}

func (u User) Profile() UserProfile {
	return UserProfile{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Handle:    u.Handle,
	}
}

func (u User) MemberView() MemberView {
	return MemberView{UserID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserProfile is the public view of a user.
type UserProfile struct {
	UserID    UserID
	Email     string
	FirstName string
	LastName  string
	Handle    string
}
