package model

// ProviderType はIDプロバイダーの種類。
type ProviderType string

const (
	ProviderOAuth ProviderType = "oauth"
	ProviderLDAP  ProviderType = "ldap"
	ProviderOIDC  ProviderType = "oidc"
	ProviderSAML  ProviderType = "saml"
)

// IdentityProvider は外部認証プロバイダーの設定。
type IdentityProvider struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	ProviderType ProviderType   `json:"providerType"`
	Config       map[string]any `json:"config"`
	Description  string         `json:"description,omitempty"`
	Priority     int            `json:"priority"`
	IsEnabled    int            `json:"isEnabled"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

// CreateIdentityProviderRequest はプロバイダー作成リクエスト。
// バックエンドはこのリクエストのみスネークケースを使う。
type CreateIdentityProviderRequest struct {
	Name         string         `json:"name"`
	ProviderType ProviderType   `json:"provider_type"`
	Config       map[string]any `json:"config"`
	Description  string         `json:"description,omitempty"`
	Priority     int            `json:"priority,omitempty"`
	IsEnabled    *bool          `json:"is_enabled,omitempty"`
}

// UpdateIdentityProviderRequest はプロバイダー更新リクエスト。
type UpdateIdentityProviderRequest struct {
	Name         *string        `json:"name,omitempty"`
	ProviderType *ProviderType  `json:"provider_type,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Priority     *int           `json:"priority,omitempty"`
	IsEnabled    *bool          `json:"is_enabled,omitempty"`
}

// ToggleProviderRequest はプロバイダーの有効・無効切り替えリクエスト。
type ToggleProviderRequest struct {
	IsEnabled bool `json:"is_enabled"`
}
