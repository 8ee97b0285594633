package auth

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions and data for view engines,
// so templates can gate markup on the signed-in user.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"admin" %}
//	{% if current_user|can_create:"posts" %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"has_role":         hasRole,
		"is_at_least":      isAtLeast,
		"can_read":         canRead,
		"can_edit":         canEdit,
		"can_create":       canCreate,
		"can_delete":       canDelete,
		"can_access":       canAccess,

		"roles": map[string]string{
			"guest":  string(RoleGuest),
			"member": string(RoleMember),
			"admin":  string(RoleAdmin),
			"owner":  string(RoleOwner),
		},
	}
}

// TemplateHelpersWithUser returns template helpers with a specific user
// set as current_user.
func TemplateHelpersWithUser(user *User) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateUserKey] = user
	return helpers
}

// TemplateHelpersWithRouter returns template helpers with user data
// extracted from the router context.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()

	if user := ctx.Locals(userKey); user != nil {
		helpers[TemplateUserKey] = user
	}

	return helpers
}

// MergeTemplateData folds the auth template helpers into a view
// context, keeping any values the caller already set.
func MergeTemplateData(ctx router.Context, data router.ViewContext) router.ViewContext {
	if data == nil {
		data = router.ViewContext{}
	}

	for key, value := range TemplateHelpersWithRouter(ctx, TemplateUserKey) {
		if _, exists := data[key]; !exists {
			data[key] = value
		}
	}

	return data
}

// GetTemplateUser extracts user data from the router context for
// template usage.
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

// isAuthenticated checks if the provided user object is not nil
func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case AuthClaims:
		return u != nil && u.UserID() != ""
	case map[string]any:
		return len(u) > 0
	default:
		return false
	}
}

// hasRole checks if the user has the specified role
func hasRole(user any, role string) bool {
	targetRole := UserRole(role)

	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return u.Role == targetRole
	case User:
		return u.Role == targetRole
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.HasRole(role)
	case map[string]any:
		if userRole, exists := u["user_role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return UserRole(roleStr) == targetRole
			}
		}
		return false
	default:
		return false
	}
}

// isAtLeast checks if the user's role meets the minimum required level
func isAtLeast(user any, minRole string) bool {
	minRoleTyped := UserRole(minRole)

	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return RoleIsAtLeast(u.Role, minRoleTyped)
	case User:
		return RoleIsAtLeast(u.Role, minRoleTyped)
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.IsAtLeast(minRole)
	case map[string]any:
		if userRole, exists := u["user_role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return RoleIsAtLeast(UserRole(roleStr), minRoleTyped)
			}
		}
		return false
	default:
		return false
	}
}

func canRead(user any) bool {
	return checkRole(user, RoleCanRead, func(c AuthClaims) bool { return c.CanRead("*") })
}

func canEdit(user any) bool {
	return checkRole(user, RoleCanEdit, func(c AuthClaims) bool { return c.CanEdit("*") })
}

func canCreate(user any) bool {
	return checkRole(user, RoleCanCreate, func(c AuthClaims) bool { return c.CanCreate("*") })
}

func canDelete(user any) bool {
	return checkRole(user, RoleCanDelete, func(c AuthClaims) bool { return c.CanDelete("*") })
}

func checkRole(user any, roleCheck func(UserRole) bool, claimsCheck func(AuthClaims) bool) bool {
	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return roleCheck(u.Role)
	case User:
		return roleCheck(u.Role)
	case AuthClaims:
		if u == nil {
			return false
		}
		return claimsCheck(u)
	case map[string]any:
		if userRole, exists := u["user_role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return roleCheck(UserRole(roleStr))
			}
		}
		return false
	default:
		return false
	}
}

// canAccess checks if a user can perform a specific action.
// Actions supported: "read", "edit", "create", "delete"
func canAccess(user any, action string) bool {
	switch action {
	case "read":
		return canRead(user)
	case "edit":
		return canEdit(user)
	case "create":
		return canCreate(user)
	case "delete":
		return canDelete(user)
	default:
		return false
	}
}
