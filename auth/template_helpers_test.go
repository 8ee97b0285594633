package auth_test

import (
	"testing"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateHelpersExposeRoleChecks(t *testing.T) {
	helpers := auth.TemplateHelpers()

	hasRole := helpers["has_role"].(func(any, string) bool)
	isAtLeast := helpers["is_at_least"].(func(any, string) bool)
	canAccess := helpers["can_access"].(func(any, string) bool)

	admin := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin, Username: "inker"}
	guest := &auth.User{ID: uuid.New(), Role: auth.RoleGuest, Username: "reader"}

	assert.True(t, hasRole(admin, "admin"))
	assert.False(t, hasRole(guest, "admin"))
	assert.True(t, isAtLeast(admin, "member"))
	assert.False(t, isAtLeast(guest, "member"))
	assert.True(t, canAccess(admin, "delete"))
	assert.False(t, canAccess(guest, "create"))

	roles := helpers["roles"].(map[string]string)
	assert.Equal(t, "owner", roles["owner"])
}

func TestMergeTemplateDataKeepsCallerValues(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleMember, Username: "inker"}

	ctx := router.NewMockContext()
	ctx.LocalsMock[auth.TemplateUserKey] = user

	viewCtx := auth.MergeTemplateData(ctx, router.ViewContext{
		"title": "signup",
		"roles": "caller wins",
	})

	require.Equal(t, "signup", viewCtx["title"])
	require.Equal(t, "caller wins", viewCtx["roles"])
	require.Equal(t, user, viewCtx[auth.TemplateUserKey])

	isAuth := viewCtx["is_authenticated"].(func(any) bool)
	assert.True(t, isAuth(viewCtx[auth.TemplateUserKey]))
}

func TestMergeTemplateDataWithoutUser(t *testing.T) {
	viewCtx := auth.MergeTemplateData(router.NewMockContext(), nil)

	require.Contains(t, viewCtx, "is_authenticated")
	require.Contains(t, viewCtx, "has_role")

	if current, exists := viewCtx[auth.TemplateUserKey]; exists {
		isAuth := viewCtx["is_authenticated"].(func(any) bool)
		assert.False(t, isAuth(current))
	}
}
