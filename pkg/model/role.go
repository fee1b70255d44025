package model

// RoleScope はロールの適用範囲。
type RoleScope string

const (
	RoleScopeProject RoleScope = "project"
	RoleScopeTeam    RoleScope = "team"
	RoleScopeOrg     RoleScope = "org"
)

// Role はRBACのロール。
type Role struct {
	ID          int64     `json:"id"`
	RoleID      string    `json:"roleId"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	Description string    `json:"description,omitempty"`
	Scope       RoleScope `json:"scope"`
	OrgID       string    `json:"orgId,omitempty"`
	// IsBuiltin は 1 なら組み込みロール。
	IsBuiltin int `json:"isBuiltin"`
	// IsEnabled は 1 なら有効。
	IsEnabled   int      `json:"isEnabled"`
	Priority    int      `json:"priority"`
	Permissions []string `json:"permissions,omitempty"`
	CreatedBy   string   `json:"createdBy,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// CreateRoleRequest はロール作成リクエスト。
type CreateRoleRequest struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	Description string    `json:"description,omitempty"`
	Scope       RoleScope `json:"scope"`
	OrgID       string    `json:"orgId,omitempty"`
	Priority    int       `json:"priority,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
}

// UpdateRoleRequest はロール更新リクエスト。nilのフィールドは変更しない。
type UpdateRoleRequest struct {
	Name        *string    `json:"name,omitempty"`
	DisplayName *string    `json:"displayName,omitempty"`
	Description *string    `json:"description,omitempty"`
	Scope       *RoleScope `json:"scope,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	IsEnabled   *int       `json:"isEnabled,omitempty"`
}

// RoleListResponse はロール一覧のページ。
type RoleListResponse struct {
	Count    int    `json:"count,omitempty"`
	PageNum  int    `json:"pageNum"`
	PageSize int    `json:"pageSize"`
	Roles    []Role `json:"roles"`
	Total    int    `json:"total"`
}

// RolePermissionsRequest はロール権限の置き換えリクエスト。
type RolePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}
