package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{name: "admin", groups: []string{"users", "admins"}, want: domainauth.RoleAdmin},
		{name: "user", groups: []string{"users"}, want: domainauth.RoleUser},
		{name: "case insensitive", groups: []string{"Users"}, want: domainauth.RoleUser},
		{name: "distinguished name", groups: []string{"CN=Admins,OU=Groups,DC=corp,DC=example,DC=com"}, want: domainauth.RoleAdmin},
		{name: "no groups", groups: nil, want: domainauth.RoleGuest},
		{name: "unrelated", groups: []string{"contractors"}, want: domainauth.RoleGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyGroupsNeverMatch(t *testing.T) {
	assert.Equal(t, domainauth.RoleGuest, StaticRoleMapper{}.Map([]string{""}))
}
