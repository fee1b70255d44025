package devserver

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/middleware"
	"github.com/arcentra/console/pkg/model"
)

// decodePassword はBase64で送られてきたパスワードを復元する。
func decodePassword(encoded string) (string, bool) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// issueLogin はユーザーにトークンを発行し、ログインレスポンスを返す。
func (s *Server) issueLogin(c *gin.Context, u userRecord) {
	token, _, err := middleware.GenerateJWT(s.jwtSecret, u.UserID, u.Username, u.IsSuperAdmin == 1, s.tokenTTL)
	if err != nil {
		s.failWithError(c, err, "トークン生成")
		return
	}
	if err := s.store.touchLastLogin(c.Request.Context(), u.UserID); err != nil {
		s.log.WithError(err).WithField("user_id", u.UserID).Warn("最終ログイン日時の更新に失敗しました")
	}
	respond(c, model.LoginResponse{
		Token:    token,
		UserInfo: u.info(),
		Role:     string(u.Role),
	})
}

// authenticate はユーザー名とBase64パスワードを検証する。
// 失敗時はエンベロープを書き込み、falseを返す。
func (s *Server) authenticate(c *gin.Context, username, encodedPassword string) (userRecord, bool) {
	password, ok := decodePassword(encodedPassword)
	if !ok {
		fail(c, envelope.CodeBadRequest, "password must be base64 encoded")
		return userRecord{}, false
	}

	u, err := s.store.userByUsername(c.Request.Context(), username)
	if errors.Is(err, errNotFound) {
		fail(c, envelope.CodeBadRequest, "invalid username or password")
		return userRecord{}, false
	}
	if err != nil {
		s.failWithError(c, err, "ユーザー取得")
		return userRecord{}, false
	}
	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		fail(c, envelope.CodeBadRequest, "invalid username or password")
		return userRecord{}, false
	}
	if u.IsEnabled != 1 {
		fail(c, envelope.CodeBadRequest, "user is disabled")
		return userRecord{}, false
	}
	return u, true
}

// handleLogin はユーザー名とパスワードによるログインを処理するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		u, ok := s.authenticate(c, req.Username, req.Password)
		if !ok {
			return
		}
		s.issueLogin(c, u)
	}
}

// handleRegister はユーザー登録を処理するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.RegisterRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			fail(c, envelope.CodeBadRequest, "username, email and password are required")
			return
		}
		password, ok := decodePassword(req.Password)
		if !ok {
			fail(c, envelope.CodeBadRequest, "password must be base64 encoded")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			s.failWithError(c, err, "パスワードのハッシュ化")
			return
		}

		u := userRecord{PasswordHash: string(hash)}
		u.Username = req.Username
		u.Email = req.Email
		u.Role = model.UserRoleUser
		u.IsEnabled = 1
		created, err := s.store.createUser(c.Request.Context(), u)
		if err != nil {
			s.failWithError(c, err, "ユーザー登録")
			return
		}
		s.issueLogin(c, created)
	}
}

// handleLDAPLogin はLDAPプロバイダー経由のログインを処理するハンドラを返す。
// 開発サーバーではディレクトリの代わりにローカルのユーザーで照合する。
func (s *Server) handleLDAPLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.enabledProvider(c, c.Param("provider"), model.ProviderLDAP); !ok {
			return
		}
		var req model.LDAPLoginRequest
		if !bindJSON(c, &req) {
			return
		}
		u, ok := s.authenticate(c, req.Username, req.Password)
		if !ok {
			return
		}
		s.issueLogin(c, u)
	}
}

// handleAuthorize はOAuth2/OIDCの認可を開始するハンドラを返す。
// 開発サーバーは外部プロバイダーを経由せず、認可コードを付けてredirect_uriへ直接戻す。
func (s *Server) handleAuthorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		if _, ok := s.enabledProvider(c, provider, model.ProviderOAuth, model.ProviderOIDC); !ok {
			return
		}
		redirectURI, err := url.Parse(c.Query("redirect_uri"))
		if err != nil || redirectURI.Scheme == "" || redirectURI.Host == "" {
			fail(c, envelope.CodeBadRequest, "redirect_uri is invalid")
			return
		}

		code := uuid.New().String()
		s.authCodesMu.Lock()
		s.authCodes[code] = provider
		s.authCodesMu.Unlock()

		q := redirectURI.Query()
		q.Set("code", code)
		q.Set("state", uuid.New().String())
		redirectURI.RawQuery = q.Encode()
		c.Redirect(http.StatusFound, redirectURI.String())
	}
}

// handleCallback は認可コードをトークンと交換するハンドラを返す。
// 認可コードは一度だけ使用できる。
func (s *Server) handleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		code := c.Query("code")

		s.authCodesMu.Lock()
		issuedFor, found := s.authCodes[code]
		delete(s.authCodes, code)
		s.authCodesMu.Unlock()

		if !found || issuedFor != provider {
			fail(c, envelope.CodeBadRequest, "invalid authorization code")
			return
		}

		ctx := c.Request.Context()
		username := provider + "-user"
		u, err := s.store.userByUsername(ctx, username)
		if errors.Is(err, errNotFound) {
			nu := userRecord{}
			nu.Username = username
			nu.Email = username + "@" + provider + ".localhost"
			nu.Role = model.UserRoleUser
			nu.IsEnabled = 1
			u, err = s.store.createUser(ctx, nu)
		}
		if err != nil {
			s.failWithError(c, err, "外部ユーザーの取得")
			return
		}
		s.issueLogin(c, u)
	}
}

// enabledProvider は指定種別の有効なプロバイダーを取得する。
// 見つからない場合はエンベロープ400を書き込み、falseを返す。
func (s *Server) enabledProvider(c *gin.Context, name string, types ...model.ProviderType) (model.IdentityProvider, bool) {
	p, err := s.store.provider(c.Request.Context(), name)
	if errors.Is(err, errNotFound) {
		fail(c, envelope.CodeBadRequest, "identity provider not found: "+name)
		return model.IdentityProvider{}, false
	}
	if err != nil {
		s.failWithError(c, err, "プロバイダー取得")
		return model.IdentityProvider{}, false
	}
	if p.IsEnabled != 1 {
		fail(c, envelope.CodeBadRequest, "identity provider is disabled: "+name)
		return model.IdentityProvider{}, false
	}
	for _, t := range types {
		if p.ProviderType == t {
			return p, true
		}
	}
	fail(c, envelope.CodeBadRequest, "identity provider type mismatch: "+string(p.ProviderType))
	return model.IdentityProvider{}, false
}
