package services

import (
	"flockr/domain"
	"flockr/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminService_ChangePermission(t *testing.T) {
	t.Run("should never raise when the level is unchanged", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		a := f.register(t, "alice")

		req.NoError(f.Admin.ChangePermission(a.Token, a.UserID, domain.PermissionOwner))
	})

	t.Run("should protect the only global owner", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		a := f.register(t, "alice")
		b := f.register(t, "bob")

		err := f.Admin.ChangePermission(a.Token, a.UserID, domain.PermissionMember)
		req.ErrorIs(err, errors.ErrLastGlobalOwner)
		req.True(errors.IsInput(err))

		req.NoError(f.Admin.ChangePermission(a.Token, b.UserID, domain.PermissionOwner))
		req.NoError(f.Admin.ChangePermission(a.Token, a.UserID, domain.PermissionMember))

		user, err := f.userRepo.Get(a.UserID)
		req.NoError(err)
		req.Equal(domain.PermissionMember, user.Permission)
	})

	t.Run("should check in order", func(t *testing.T) {
		f := newFixture(t)
		a := f.register(t, "alice")
		b := f.register(t, "bob")

		tests := []struct {
			name       string
			token      domain.Token
			target     domain.UserID
			permission domain.Permission
			want       error
		}{
			{"bad token before bad level", "bad-token", b.UserID, 7, errors.ErrInvalidToken},
			{"bad level before caller rights", b.Token, a.UserID, 7, errors.ErrInvalidPermission},
			{"caller is not an owner", b.Token, a.UserID, domain.PermissionMember, errors.ErrNotGlobalOwner},
			{"unknown target", a.Token, 42, domain.PermissionMember, errors.ErrUserNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				require.ErrorIs(t, f.Admin.ChangePermission(tt.token, tt.target, tt.permission), tt.want)
			})
		}
	})
}
