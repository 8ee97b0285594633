package auth_test

import (
	"testing"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role      auth.UserRole
		canRead   bool
		canEdit   bool
		canCreate bool
		canDelete bool
	}{
		{auth.RoleGuest, true, false, false, false},
		{auth.RoleMember, true, true, false, false},
		{auth.RoleAdmin, true, true, true, false},
		{auth.RoleOwner, true, true, true, true},
		{auth.UserRole("intruder"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.canRead, auth.RoleCanRead(tt.role))
			assert.Equal(t, tt.canEdit, auth.RoleCanEdit(tt.role))
			assert.Equal(t, tt.canCreate, auth.RoleCanCreate(tt.role))
			assert.Equal(t, tt.canDelete, auth.RoleCanDelete(tt.role))
		})
	}
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, auth.RoleIsAtLeast(auth.RoleOwner, auth.RoleAdmin))
	assert.True(t, auth.RoleIsAtLeast(auth.RoleMember, auth.RoleMember))
	assert.False(t, auth.RoleIsAtLeast(auth.RoleGuest, auth.RoleMember))
	assert.False(t, auth.RoleIsAtLeast(auth.UserRole("intruder"), auth.RoleGuest))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("superuser")
	assert.False(t, ok)
}
