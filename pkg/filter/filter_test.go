package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcentra/console/pkg/model"
)

func userNames(users []model.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}

func roleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}

func TestUsers(t *testing.T) {
	t.Parallel()

	users := []model.User{
		{Username: "alice", Email: "alice@example.com", FirstName: "Alice", Role: model.UserRoleAdmin, IsEnabled: 1},
		{Username: "bob", Email: "bob@corp.io", LastName: "Builder", Role: model.UserRoleUser, IsEnabled: 0},
		{Username: "carol", Email: "carol@example.com", Role: model.UserRoleViewer, IsEnabled: 1},
	}

	tests := []struct {
		name   string
		filter UserFilter
		want   []string
	}{
		{"条件なしは全件", UserFilter{}, []string{"alice", "bob", "carol"}},
		{"allは条件なし", UserFilter{Role: All, Status: All}, []string{"alice", "bob", "carol"}},
		{"ロールで絞り込み", UserFilter{Role: "admin"}, []string{"alice"}},
		{"activeで絞り込み", UserFilter{Status: StatusActive}, []string{"alice", "carol"}},
		{"inactiveで絞り込み", UserFilter{Status: StatusInactive}, []string{"bob"}},
		{"メールで検索", UserFilter{Search: "EXAMPLE"}, []string{"alice", "carol"}},
		{"姓で検索", UserFilter{Search: "build"}, []string{"bob"}},
		{"条件の組み合わせ", UserFilter{Status: StatusActive, Search: "car"}, []string{"carol"}},
		{"一致なし", UserFilter{Role: "admin", Status: StatusInactive}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, userNames(Users(users, tt.filter)))
		})
	}
}

func TestRoles(t *testing.T) {
	t.Parallel()

	roles := []model.Role{
		{Name: "org-admin", DisplayName: "Organization Admin", Scope: model.RoleScopeOrg, IsEnabled: 1},
		{Name: "developer", Description: "Can run pipelines", Scope: model.RoleScopeProject, IsEnabled: 1},
		{Name: "legacy", Scope: model.RoleScopeTeam, IsEnabled: 0},
	}

	tests := []struct {
		name   string
		filter RoleFilter
		want   []string
	}{
		{"条件なしは全件", RoleFilter{}, []string{"org-admin", "developer", "legacy"}},
		{"スコープで絞り込み", RoleFilter{Scope: "project"}, []string{"developer"}},
		{"enabledで絞り込み", RoleFilter{Status: StatusEnabled}, []string{"org-admin", "developer"}},
		{"disabledで絞り込み", RoleFilter{Status: StatusDisabled}, []string{"legacy"}},
		{"表示名で検索", RoleFilter{Search: "organization"}, []string{"org-admin"}},
		{"説明で検索", RoleFilter{Search: "PIPELINE"}, []string{"developer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, roleNames(Roles(roles, tt.filter)))
		})
	}
}

func TestProviders(t *testing.T) {
	t.Parallel()

	providers := []model.IdentityProvider{
		{Name: "github", ProviderType: model.ProviderOAuth, IsEnabled: 1},
		{Name: "corp-ldap", ProviderType: model.ProviderLDAP, Description: "Corporate directory", IsEnabled: 0},
		{Name: "okta", ProviderType: model.ProviderOIDC, IsEnabled: 1},
	}

	got := Providers(providers, ProviderFilter{Type: "ldap"})
	assert.Len(t, got, 1)
	assert.Equal(t, "corp-ldap", got[0].Name)

	got = Providers(providers, ProviderFilter{Status: StatusEnabled})
	assert.Len(t, got, 2)

	got = Providers(providers, ProviderFilter{Search: "directory"})
	assert.Len(t, got, 1)
	assert.Equal(t, "corp-ldap", got[0].Name)
}

func TestAvailableScopes(t *testing.T) {
	t.Parallel()

	roles := []model.Role{
		{Scope: model.RoleScopeTeam},
		{Scope: model.RoleScopeOrg},
		{Scope: model.RoleScopeTeam},
		{Scope: model.RoleScopeProject},
	}
	assert.Equal(t, []string{"org", "project", "team"}, AvailableScopes(roles))
	assert.Empty(t, AvailableScopes(nil))
}

func TestFindRole(t *testing.T) {
	t.Parallel()

	roles := []model.Role{{RoleID: "r1", Name: "admin"}, {RoleID: "r2", Name: "viewer"}}

	r, ok := FindRole(roles, "r2")
	assert.True(t, ok)
	assert.Equal(t, "viewer", r.Name)

	r, ok = FindRole(roles, "admin")
	assert.True(t, ok)
	assert.Equal(t, "r1", r.RoleID)

	_, ok = FindRole(roles, "missing")
	assert.False(t, ok)
}
