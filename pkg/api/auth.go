package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/arcentra/console/pkg/apiclient"
	"github.com/arcentra/console/pkg/model"
)

// AuthService はログイン・登録・外部IDプロバイダー連携を扱う。
// 失敗は呼び出し元が表示するため、すべて通知を抑止する。
type AuthService struct {
	r Requester
}

// Login はユーザー名とパスワードでログインする。
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	req.Password = encodePassword(req.Password)
	var resp model.LoginResponse
	if err := s.r.PostJSON(ctx, "/users/login", req, &resp, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginWithLDAP は指定LDAPプロバイダーでログインする。
func (s *AuthService) LoginWithLDAP(ctx context.Context, provider string, req model.LDAPLoginRequest) (*model.LoginResponse, error) {
	req.Password = encodePassword(req.Password)
	var resp model.LoginResponse
	if err := s.r.PostJSON(ctx, "/identity/ldap/login/"+url.PathEscape(provider), req, &resp, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AuthorizeURL はOAuth2/OIDCの認可開始URLを組み立てる。
// バックエンドがプロバイダーへのリダイレクトを行う。
func AuthorizeURL(baseURL, provider, redirectURI string) string {
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	return strings.TrimRight(baseURL, "/") + "/identity/authorize/" + url.PathEscape(provider) + "?" + q.Encode()
}

// HandleCallback は認可コードをトークンと交換する。stateは空なら送らない。
func (s *AuthService) HandleCallback(ctx context.Context, provider, code, state string) (*model.LoginResponse, error) {
	q := url.Values{}
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}

	var resp model.LoginResponse
	path := withQuery("/identity/callback/"+url.PathEscape(provider), q)
	if err := s.r.GetJSON(ctx, path, &resp, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register は新しいユーザーを登録する。
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	req.Password = encodePassword(req.Password)
	var resp model.LoginResponse
	if err := s.r.PostJSON(ctx, "/users/register", req, &resp, apiclient.Silence()); err != nil {
		return nil, err
	}
	return &resp, nil
}
