package api

import (
	"context"
	"net/url"

	"github.com/arcentra/console/pkg/model"
)

// RoleService はRBACロールの操作を扱う。
type RoleService struct {
	r Requester
}

func rolePath(roleID string) string {
	return "/roles/" + url.PathEscape(roleID)
}

// ListRoles はロール一覧を取得する。scopeが空なら全スコープ。
func (s *RoleService) ListRoles(ctx context.Context, page, pageSize int, scope string) (*model.RoleListResponse, error) {
	q := pageQuery(page, pageSize)
	if scope != "" {
		q.Set("scope", scope)
	}
	var resp model.RoleListResponse
	if err := s.r.GetJSON(ctx, withQuery("/roles", q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRole はロールを取得する。
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	var role model.Role
	if err := s.r.GetJSON(ctx, rolePath(roleID), &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole はロールを作成する。
func (s *RoleService) CreateRole(ctx context.Context, req model.CreateRoleRequest) (*model.Role, error) {
	var role model.Role
	if err := s.r.PostJSON(ctx, "/roles", req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole はロールを更新する。
func (s *RoleService) UpdateRole(ctx context.Context, roleID string, req model.UpdateRoleRequest) (*model.Role, error) {
	var role model.Role
	if err := s.r.PutJSON(ctx, rolePath(roleID), req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole はロールを削除する。
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	return s.r.DeleteJSON(ctx, rolePath(roleID), nil)
}

// ToggleRole はロールの有効・無効を反転する。
func (s *RoleService) ToggleRole(ctx context.Context, roleID string) (*model.Role, error) {
	var role model.Role
	if err := s.r.PutJSON(ctx, rolePath(roleID)+"/toggle", nil, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRolePermissions はロールの権限一覧を取得する。
func (s *RoleService) GetRolePermissions(ctx context.Context, roleID string) ([]string, error) {
	var perms []string
	if err := s.r.GetJSON(ctx, rolePath(roleID)+"/permissions", &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// UpdateRolePermissions はロールの権限一覧を置き換える。
func (s *RoleService) UpdateRolePermissions(ctx context.Context, roleID string, permissions []string) (*model.Role, error) {
	if permissions == nil {
		permissions = []string{}
	}
	var role model.Role
	req := model.RolePermissionsRequest{Permissions: permissions}
	if err := s.r.PutJSON(ctx, rolePath(roleID)+"/permissions", req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}
