package api

import (
	"context"
	"net/url"

	"github.com/arcentra/console/pkg/model"
)

// UserManagementService は管理者によるユーザー管理を扱う。
type UserManagementService struct {
	r Requester
}

// ListUsers はユーザー一覧を取得する。0を渡したページング値は送らない。
func (s *UserManagementService) ListUsers(ctx context.Context, page, pageSize int) (*model.UserListResponse, error) {
	var resp model.UserListResponse
	if err := s.r.GetJSON(ctx, withQuery("/users", pageQuery(page, pageSize)), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUser はユーザーを更新する。
func (s *UserManagementService) UpdateUser(ctx context.Context, userID string, req model.UpdateUserRequest) (*model.User, error) {
	var user model.User
	if err := s.r.PutJSON(ctx, "/users/"+url.PathEscape(userID), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InviteUser はユーザーを招待する。失敗は通知される。
func (s *UserManagementService) InviteUser(ctx context.Context, req model.InviteUserRequest) error {
	return s.r.PostJSON(ctx, "/users/invite", req, nil)
}

// ResetPassword はログインユーザー自身のパスワードを変更する。
func (s *UserManagementService) ResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{
		"oldPassword": encodePassword(oldPassword),
		"newPassword": encodePassword(newPassword),
	}
	return s.r.PutJSON(ctx, "/users/me/password", body, nil)
}

// ResetUserPassword は管理者が任意ユーザーのパスワードを再設定する。
func (s *UserManagementService) ResetUserPassword(ctx context.Context, userID, newPassword string) error {
	body := map[string]string{"password": encodePassword(newPassword)}
	return s.r.PutJSON(ctx, "/users/"+url.PathEscape(userID)+"/password", body, nil)
}
