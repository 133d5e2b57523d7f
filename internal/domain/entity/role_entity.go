package entity

import (
	"slices"
	"time"
)

// Role represents an authorization role
// Many-to-many with User via user_roles
type Role struct {
	ID        string
	Name      RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleUser  RoleName = "user"
)

// DefaultRole is assigned to every new account. Its absence from the roles
// table is a configuration error.
const DefaultRole = RoleUser

func ParseRoleName(s string) (RoleName, bool) {
	switch RoleName(s) {
	case RoleAdmin, RoleUser:
		return RoleName(s), true
	}
	return "", false
}

// RoleSet is the set of roles held by a user or carried in a token.
type RoleSet []RoleName

func NewRoleSet(names ...string) RoleSet {
	out := make(RoleSet, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRoleName(n); ok && !out.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) Has(r RoleName) bool { return slices.Contains(s, r) }

func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

type Permission string

const (
	PermUseApp        Permission = "use_app"
	PermManageCatalog Permission = "manage_catalog"
	PermManageUsers   Permission = "manage_users"
)

// Authorize is the single authorization decision for role-gated routes.
func Authorize(roles RoleSet, p Permission) bool {
	switch p {
	case PermUseApp:
		return roles.Has(RoleUser) || roles.Has(RoleAdmin)
	case PermManageCatalog, PermManageUsers:
		return roles.Has(RoleAdmin)
	}
	return false
}

// CanMutateAccount reports whether an account holding target roles may have
// its roles changed or be deleted. Admin accounts are protected.
func CanMutateAccount(target RoleSet) bool {
	return !target.Has(RoleAdmin)
}
