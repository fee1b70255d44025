package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"github.com/arcentra/console/pkg/apiclient"
	"github.com/arcentra/console/pkg/model"
)

// UserService はログインユーザー自身に関する操作を扱う。
type UserService struct {
	r Requester
}

// Me は現在のユーザー情報を取得する。
func (s *UserService) Me(ctx context.Context) (*model.UserInfo, error) {
	var info model.UserInfo
	if err := s.r.GetJSON(ctx, "/users/me", &info, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateUserInfo はプロフィールを更新する。
func (s *UserService) UpdateUserInfo(ctx context.Context, userID string, req model.UpdateUserInfoRequest) (*model.UserInfo, error) {
	var info model.UserInfo
	if err := s.r.PutJSON(ctx, "/users/"+url.PathEscape(userID), req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout はサーバー側のトークンを失効させる。
func (s *UserService) Logout(ctx context.Context) (*model.MessageResponse, error) {
	var resp model.MessageResponse
	if err := s.r.PostJSON(ctx, "/users/logout", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken は新しいトークンを取得する。
func (s *UserService) RefreshToken(ctx context.Context) (*model.TokenResponse, error) {
	var resp model.TokenResponse
	if err := s.r.PostJSON(ctx, "/users/refresh", struct{}{}, &resp, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InviteUser はユーザーを招待する。失敗は呼び出し元が表示する。
func (s *UserService) InviteUser(ctx context.Context, req model.InviteUserRequest) error {
	return s.r.PostJSON(ctx, "/users/invite", req, nil, apiclient.Silence())
}

// UploadAvatar はアバター画像をmultipart/form-dataで送信する。
func (s *UserService) UploadAvatar(ctx context.Context, filename string, content io.Reader) (*model.AvatarResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
	}

	var resp model.AvatarResponse
	err = s.r.PostJSON(ctx, "/users/avatar", &buf, &resp,
		apiclient.WithHeader("Content-Type", mw.FormDataContentType()))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
