package api

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"

	"github.com/arcentra/console/pkg/apiclient"
)

// Requester はエンベロープを解釈するHTTPクライアント。
type Requester interface {
	GetJSON(ctx context.Context, path string, result any, opts ...apiclient.RequestOption) error
	PostJSON(ctx context.Context, path string, body, result any, opts ...apiclient.RequestOption) error
	PutJSON(ctx context.Context, path string, body, result any, opts ...apiclient.RequestOption) error
	DeleteJSON(ctx context.Context, path string, result any, opts ...apiclient.RequestOption) error
}

// Apis はすべてのサービスをまとめたもの。
type Apis struct {
	Auth           *AuthService
	User           *UserService
	UserManagement *UserManagementService
	Role           *RoleService
	Identity       *IdentityService
	Organization   *OrganizationService
}

// New はrを共有する全サービスを生成する。
func New(r Requester) *Apis {
	return &Apis{
		Auth:           &AuthService{r: r},
		User:           &UserService{r: r},
		UserManagement: &UserManagementService{r: r},
		Role:           &RoleService{r: r},
		Identity:       &IdentityService{r: r},
		Organization:   &OrganizationService{r: r},
	}
}

// encodePassword はパスワードを送信用にBase64エンコードする。
func encodePassword(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

// withQuery はクエリが空でなければpathに付与する。
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// pageQuery はゼロ値を省いたページングのクエリを生成する。
func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q
}
