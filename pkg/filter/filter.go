// Package filter はユーザー・ロール・IDプロバイダー一覧のクライアント側絞り込みを提供する。
//
// 空文字列と "all" は条件なしとして扱う。検索語は大文字小文字を区別しない部分一致。
// 入力の順序は保持される。
package filter

import (
	"slices"
	"strings"

	"github.com/arcentra/console/pkg/model"
)

// All は条件なしを表す値。
const All = "all"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// UserFilter はユーザー一覧の絞り込み条件。
type UserFilter struct {
	// Role はロール名。
	Role string
	// Status は "active" または "inactive"。
	Status string
	// Search はユーザー名・メール・氏名に対する検索語。
	Search string
}

// RoleFilter はロール一覧の絞り込み条件。
type RoleFilter struct {
	Scope string
	// Status は "enabled" または "disabled"。
	Status string
	// Search は名前・表示名・説明に対する検索語。
	Search string
}

// ProviderFilter はIDプロバイダー一覧の絞り込み条件。
type ProviderFilter struct {
	Type string
	// Status は "enabled" または "disabled"。
	Status string
	// Search は名前・説明に対する検索語。
	Search string
}

func isAll(v string) bool {
	return v == "" || v == All
}

// matchEnabled はフラグ値(0/1)が状態条件を満たすかどうかを返す。
func matchEnabled(status, on, off string, enabled int) bool {
	switch status {
	case on:
		return enabled == 1
	case off:
		return enabled == 0
	default:
		return true
	}
}

// containsFold はfieldsのいずれかが検索語を含むかどうかを返す。
func containsFold(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Users は条件に一致するユーザーを返す。
func Users(users []model.User, f UserFilter) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if !isAll(f.Role) && string(u.Role) != f.Role {
			continue
		}
		if !matchEnabled(f.Status, StatusActive, StatusInactive, u.IsEnabled) {
			continue
		}
		if !containsFold(f.Search, u.Username, u.Email, u.FirstName, u.LastName) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Roles は条件に一致するロールを返す。
func Roles(roles []model.Role, f RoleFilter) []model.Role {
	out := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		if !isAll(f.Scope) && string(r.Scope) != f.Scope {
			continue
		}
		if !matchEnabled(f.Status, StatusEnabled, StatusDisabled, r.IsEnabled) {
			continue
		}
		if !containsFold(f.Search, r.Name, r.DisplayName, r.Description) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Providers は条件に一致するIDプロバイダーを返す。
func Providers(providers []model.IdentityProvider, f ProviderFilter) []model.IdentityProvider {
	out := make([]model.IdentityProvider, 0, len(providers))
	for _, p := range providers {
		if !isAll(f.Type) && string(p.ProviderType) != f.Type {
			continue
		}
		if !matchEnabled(f.Status, StatusEnabled, StatusDisabled, p.IsEnabled) {
			continue
		}
		if !containsFold(f.Search, p.Name, p.Description) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AvailableScopes はロールに含まれるスコープを重複なく昇順で返す。
func AvailableScopes(roles []model.Role) []string {
	scopes := make([]string, 0, len(roles))
	for _, r := range roles {
		scopes = append(scopes, string(r.Scope))
	}
	slices.Sort(scopes)
	return slices.Compact(scopes)
}

// FindRole はロールIDまたはロール名が一致するロールを返す。
// ユーザーのロール表示に使う。
func FindRole(roles []model.Role, idOrName string) (model.Role, bool) {
	for _, r := range roles {
		if r.RoleID == idOrName || r.Name == idOrName {
			return r, true
		}
	}
	return model.Role{}, false
}
