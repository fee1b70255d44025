package model

// UserRole はユーザーの役割を表す。
type UserRole string

const (
	// UserRoleAdmin は管理者。
	UserRoleAdmin UserRole = "admin"
	// UserRoleUser は一般ユーザー。
	UserRoleUser UserRole = "user"
	// UserRoleViewer は閲覧専用ユーザー。
	UserRoleViewer UserRole = "viewer"
)

// InvitationStatus は招待の状態を表す。
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// UserInfo はログイン中のユーザー自身の情報。
type UserInfo struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}

// User はユーザー管理画面で扱うユーザー。
type User struct {
	UserID           string           `json:"userId"`
	Username         string           `json:"username"`
	FirstName        string           `json:"firstName,omitempty"`
	LastName         string           `json:"lastName,omitempty"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	Avatar           string           `json:"avatar,omitempty"`
	Role             UserRole         `json:"role,omitempty"`
	IsEnabled        int              `json:"isEnabled"`
	IsSuperAdmin     int              `json:"isSuperAdmin"`
	CreatedAt        string           `json:"createdAt,omitempty"`
	UpdatedAt        string           `json:"updatedAt,omitempty"`
	LastLoginAt      *string          `json:"lastLoginAt,omitempty"`
	InvitationStatus InvitationStatus `json:"invitationStatus,omitempty"`
}

// LoginRequest はパスワードログインのリクエスト。
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LDAPLoginRequest はLDAPログインのリクエスト。
type LDAPLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest はユーザー登録のリクエスト。
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse はログイン・登録・OAuthコールバックの結果。
type LoginResponse struct {
	Token    string   `json:"token"`
	UserInfo UserInfo `json:"userinfo"`
	Role     string   `json:"role,omitempty"`
}

// UpdateUserInfoRequest は自分自身のプロフィール更新リクエスト。
type UpdateUserInfoRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// UpdateUserRequest は管理者によるユーザー更新リクエスト。
type UpdateUserRequest struct {
	Username  *string   `json:"username,omitempty"`
	Email     *string   `json:"email,omitempty"`
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Role      *UserRole `json:"role,omitempty"`
	IsEnabled *int      `json:"isEnabled,omitempty"`
}

// InviteUserRequest はユーザー招待のリクエスト。
type InviteUserRequest struct {
	Email string   `json:"email"`
	Role  UserRole `json:"role,omitempty"`
}

// UserListResponse はユーザー一覧のページ。
type UserListResponse struct {
	Count    int    `json:"count"`
	PageNum  int    `json:"pageNum"`
	PageSize int    `json:"pageSize"`
	Users    []User `json:"users"`
}

// TokenResponse はトークン更新の結果。
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse はメッセージのみを返すAPIの結果。
type MessageResponse struct {
	Msg string `json:"msg"`
}

// AvatarResponse はアバターアップロードの結果。
type AvatarResponse struct {
	URL string `json:"url"`
}
