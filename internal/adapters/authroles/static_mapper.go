// Package authroles maps identity-provider groups to application roles.
package authroles

import (
	"slices"
	"strings"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// StaticRoleMapper grants admin to members of AdminGroup and user to members of UserGroup.
// Group names compare case-insensitively; AD distinguished names match on their CN.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case m.member(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case m.member(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

func (m StaticRoleMapper) member(groups []string, want string) bool {
	if want == "" {
		return false
	}
	return slices.ContainsFunc(groups, func(g string) bool {
		return strings.EqualFold(commonName(g), want) || strings.EqualFold(g, want)
	})
}

// commonName returns the CN of an LDAP distinguished name, or g unchanged.
func commonName(g string) string {
	first, _, _ := strings.Cut(g, ",")
	if k, v, ok := strings.Cut(first, "="); ok && strings.EqualFold(strings.TrimSpace(k), "CN") {
		return strings.TrimSpace(v)
	}
	return g
}
