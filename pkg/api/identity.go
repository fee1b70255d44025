package api

import (
	"context"
	"net/url"

	"github.com/arcentra/console/pkg/model"
)

// IdentityService は外部IDプロバイダー設定の操作を扱う。
type IdentityService struct {
	r Requester
}

func providerPath(name string) string {
	return "/identity/providers/" + url.PathEscape(name)
}

// ListIdentityProviders はプロバイダー一覧を取得する。providerTypeが空なら全種類。
func (s *IdentityService) ListIdentityProviders(ctx context.Context, providerType string) ([]model.IdentityProvider, error) {
	q := url.Values{}
	if providerType != "" {
		q.Set("type", providerType)
	}
	var providers []model.IdentityProvider
	if err := s.r.GetJSON(ctx, withQuery("/identity/providers", q), &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// ListProviderTypes はバックエンドが対応するプロバイダー種別を取得する。
func (s *IdentityService) ListProviderTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := s.r.GetJSON(ctx, "/identity/providers/types", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// GetIdentityProvider は設定を含むプロバイダーの詳細を取得する。
func (s *IdentityService) GetIdentityProvider(ctx context.Context, name string) (*model.IdentityProvider, error) {
	var p model.IdentityProvider
	if err := s.r.GetJSON(ctx, providerPath(name), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIdentityProvider はプロバイダーを作成する。
func (s *IdentityService) CreateIdentityProvider(ctx context.Context, req model.CreateIdentityProviderRequest) (*model.IdentityProvider, error) {
	var p model.IdentityProvider
	if err := s.r.PostJSON(ctx, "/identity/providers", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateIdentityProvider はプロバイダーを更新する。
func (s *IdentityService) UpdateIdentityProvider(ctx context.Context, name string, req model.UpdateIdentityProviderRequest) (*model.IdentityProvider, error) {
	var p model.IdentityProvider
	if err := s.r.PutJSON(ctx, providerPath(name), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteIdentityProvider はプロバイダーを削除する。
func (s *IdentityService) DeleteIdentityProvider(ctx context.Context, name string) error {
	return s.r.DeleteJSON(ctx, providerPath(name), nil)
}

// ToggleIdentityProvider はプロバイダーの有効・無効を設定する。
func (s *IdentityService) ToggleIdentityProvider(ctx context.Context, name string, enabled bool) (*model.IdentityProvider, error) {
	var p model.IdentityProvider
	req := model.ToggleProviderRequest{IsEnabled: enabled}
	if err := s.r.PutJSON(ctx, providerPath(name)+"/toggle", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
