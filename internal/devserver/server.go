package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/arcentra/console/internal/config"
	"github.com/arcentra/console/pkg/envelope"
	"github.com/arcentra/console/pkg/logger"
	"github.com/arcentra/console/pkg/middleware"
	"github.com/arcentra/console/pkg/model"
)

// AdminUsername は初期管理者のユーザー名。
const AdminUsername = "admin"

const (
	// defaultPageSize はpageSize未指定時の件数。
	defaultPageSize = 20
	// maxPageSize と maxPage を超える値は上限に丸める。
	maxPageSize = 1000
	maxPage     = 1_000_000
)

// Server は開発用バックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はSQLiteの永続化層。
	store *store
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// tokenTTL は発行するトークンの有効期間。
	tokenTTL time.Duration
	// log はサーバー内部のエラー記録に使用する。
	log logrus.FieldLogger
	// registry は/metricsで公開するメトリクスの登録先。
	registry *prometheus.Registry
	// requests はルート別のリクエスト数。
	requests *prometheus.CounterVec

	// authCodes は発行済みの認可コードとプロバイダー名の対応。
	authCodes   map[string]string
	authCodesMu sync.Mutex
}

// NewServer は新しい開発用バックエンドを生成する。
// データベースのマイグレーションと初期データの投入もここで行う。
func NewServer(ctx context.Context, cfg config.DevServerConfig, log logrus.FieldLogger) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	st, err := openStore(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arcentra",
		Subsystem: "devserver",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests handled by the development backend.",
	}, []string{"method", "route", "status"})
	registry.MustRegister(requests, collectors.NewGoCollector())

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:    router,
		port:      cfg.Port,
		store:     st,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		log:       log,
		registry:  registry,
		requests:  requests,
		authCodes: make(map[string]string),
	}
	router.Use(s.countRequests())

	if err := s.seed(ctx, cfg.AdminPassword); err != nil {
		st.Close()
		return nil, fmt.Errorf("初期データの投入に失敗: %w", err)
	}
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされると停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("サーバーの停止に失敗: %w", err)
		}
		return nil
	}
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	// 認証不要
	v1.POST("/users/login", s.handleLogin())
	v1.POST("/users/register", s.handleRegister())
	v1.POST("/identity/ldap/login/:provider", s.handleLDAPLogin())
	v1.GET("/identity/authorize/:provider", s.handleAuthorize())
	v1.GET("/identity/callback/:provider", s.handleCallback())

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(s.jwtSecret, s.store))
	{
		authed.GET("/users/me", s.handleMe())
		authed.PUT("/users/me/password", s.handleChangePassword())
		authed.POST("/users/logout", s.handleLogout())
		authed.POST("/users/refresh", s.handleRefresh())
		authed.POST("/users/avatar", s.handleUploadAvatar())
		authed.PUT("/users/:id", s.handleUpdateUser())

		authed.GET("/identity/providers/types", s.handleProviderTypes())

		authed.GET("/organizations", s.handleListOrganizations())
		authed.POST("/organizations", s.handleCreateOrganization())
		authed.GET("/organizations/:id", s.handleGetOrganization())
		authed.PUT("/organizations/:id", s.handleUpdateOrganization())
		authed.DELETE("/organizations/:id", s.handleDeleteOrganization())
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireSuperAdmin())
	{
		admin.GET("/users", s.handleListUsers())
		admin.POST("/users/invite", s.handleInviteUser())
		admin.PUT("/users/:id/password", s.handleResetUserPassword())

		admin.GET("/roles", s.handleListRoles())
		admin.POST("/roles", s.handleCreateRole())
		admin.GET("/roles/:id", s.handleGetRole())
		admin.PUT("/roles/:id", s.handleUpdateRole())
		admin.DELETE("/roles/:id", s.handleDeleteRole())
		admin.PUT("/roles/:id/toggle", s.handleToggleRole())
		admin.GET("/roles/:id/permissions", s.handleGetRolePermissions())
		admin.PUT("/roles/:id/permissions", s.handleUpdateRolePermissions())

		admin.GET("/identity/providers", s.handleListProviders())
		admin.POST("/identity/providers", s.handleCreateProvider())
		admin.GET("/identity/providers/:name", s.handleGetProvider())
		admin.PUT("/identity/providers/:name", s.handleUpdateProvider())
		admin.DELETE("/identity/providers/:name", s.handleDeleteProvider())
		admin.PUT("/identity/providers/:name/toggle", s.handleToggleProvider())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "devserver"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// countRequests はルート別のリクエスト数を記録するミドルウェアを返す。
func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// seed は初期管理者と組み込みロールを用意する。既に存在する場合は何もしない。
func (s *Server) seed(ctx context.Context, adminPassword string) error {
	_, err := s.store.userByUsername(ctx, AdminUsername)
	if errors.Is(err, errNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
		}
		admin := userRecord{PasswordHash: string(hash)}
		admin.Username = AdminUsername
		admin.Email = "admin@localhost"
		admin.Role = model.UserRoleAdmin
		admin.IsEnabled = 1
		admin.IsSuperAdmin = 1
		if _, err := s.store.createUser(ctx, admin); err != nil {
			return fmt.Errorf("管理者の作成に失敗: %w", err)
		}
		s.log.WithField("username", AdminUsername).Info("初期管理者を作成しました")
	} else if err != nil {
		return err
	}

	builtins := []model.CreateRoleRequest{
		{Name: "admin", DisplayName: "Administrator", Scope: model.RoleScopeOrg, Priority: 100,
			Permissions: []string{"*"}},
		{Name: "developer", DisplayName: "Developer", Scope: model.RoleScopeProject, Priority: 50,
			Permissions: []string{"project:read", "project:write", "pipeline:run"}},
		{Name: "viewer", DisplayName: "Viewer", Scope: model.RoleScopeProject, Priority: 10,
			Permissions: []string{"project:read"}},
	}
	for _, r := range builtins {
		_, err := s.store.role(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, errNotFound) {
			return err
		}
		if _, err := s.store.createRole(ctx, r, AdminUsername, true); err != nil {
			return fmt.Errorf("ロール %s の作成に失敗: %w", r.Name, err)
		}
	}
	return nil
}

// respond は成功エンベロープを返す。
func respond(c *gin.Context, detail any) {
	env, err := envelope.OK(detail)
	if err != nil {
		fail(c, envelope.CodeInternal, "レスポンスの生成に失敗しました")
		return
	}
	c.JSON(http.StatusOK, env)
}

// fail は失敗エンベロープを返す。HTTPステータスは常に200。
func fail(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, envelope.Fail(code, msg))
}

// failWithError はストアのエラーを対応するエンベロープコードに変換して返す。
func (s *Server) failWithError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, errNotFound):
		fail(c, envelope.CodeNotFound, "not found")
	case errors.Is(err, errConflict):
		fail(c, envelope.CodeConflict, "already exists")
	default:
		s.log.WithError(err).WithField("action", action).Error("リクエストの処理に失敗しました")
		fail(c, envelope.CodeInternal, action+"に失敗しました")
	}
}

// bindJSON はリクエストボディをdstにデシリアライズする。失敗時はエンベロープ400を返しfalseとなる。
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, envelope.CodeBadRequest, "リクエストボディが不正です")
		return false
	}
	return true
}

// pagination はpage・pageSizeクエリを解釈する。
// OFFSETが溢れないよう、どちらも上限に丸める。
func pagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, pageSize = 1, defaultPageSize
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(c, envelope.CodeBadRequest, "page は1以上の整数で指定してください")
			return 0, 0, false
		}
		page = n
	}
	if v := c.Query("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(c, envelope.CodeBadRequest, "pageSize は1以上の整数で指定してください")
			return 0, 0, false
		}
		pageSize = n
	}
	return min(page, maxPage), min(pageSize, maxPageSize), true
}
