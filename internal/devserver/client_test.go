package devserver_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcentra/console/internal/config"
	"github.com/arcentra/console/internal/devserver"
	"github.com/arcentra/console/pkg/api"
	"github.com/arcentra/console/pkg/apiclient"
	"github.com/arcentra/console/pkg/model"
	"github.com/arcentra/console/pkg/session"
)

// recorder は通知と画面遷移を記録する。
type recorder struct {
	mu        sync.Mutex
	errors    []string
	redirects []string
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
}

func (r *recorder) snapshot() (errors, redirects []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...), append([]string(nil), r.redirects...)
}

// newConsole は開発サーバーと、それに接続したAPIクライアントを用意する。
func newConsole(t *testing.T) (*api.Apis, *session.Store, *recorder) {
	t.Helper()

	srv, err := devserver.NewServer(context.Background(), config.DevServerConfig{
		Port:          "0",
		DBPath:        ":memory:",
		JWTSecret:     "e2e-secret",
		TokenTTL:      time.Hour,
		AdminPassword: "admin",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := session.NewMemoryStore()
	rec := &recorder{}
	client := apiclient.New(ts.URL+"/api/v1",
		apiclient.WithTokenSource(store),
		apiclient.WithSessionClearer(store),
		apiclient.WithNotifier(rec),
		apiclient.WithNavigator(rec),
	)
	return api.New(client), store, rec
}

func loginAs(t *testing.T, apis *api.Apis, store *session.Store, username, password string) {
	t.Helper()

	ctx := context.Background()
	resp, err := apis.Auth.Login(ctx, model.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	require.NoError(t, api.Establish(ctx, store, resp))
}

func TestConsoleAgainstDevServer(t *testing.T) {
	t.Parallel()

	t.Run("ログインからログアウト後のセッション破棄まで", func(t *testing.T) {
		t.Parallel()
		apis, store, rec := newConsole(t)
		ctx := context.Background()

		loginAs(t, apis, store, "admin", "admin")
		require.True(t, store.Snapshot().LoggedIn())
		assert.Equal(t, "admin", store.Snapshot().Role)

		me, err := apis.User.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "admin", me.Username)

		roles, err := apis.Role.ListRoles(ctx, 1, 10, "")
		require.NoError(t, err)
		assert.Len(t, roles.Roles, 3)

		_, err = apis.User.Logout(ctx)
		require.NoError(t, err)

		// サーバー側で失効したトークンはまだローカルに残っている
		require.True(t, store.Snapshot().LoggedIn())

		_, err = apis.User.Me(ctx)
		var sessErr *apiclient.SessionExpiredError
		require.ErrorAs(t, err, &sessErr)
		assert.Equal(t, 4406, sessErr.Code)
		assert.Equal(t, apiclient.SessionExpiredMessage, err.Error())

		assert.False(t, store.Snapshot().LoggedIn())
		assert.Nil(t, store.Snapshot().User)
		notified, redirects := rec.snapshot()
		assert.Empty(t, notified)
		assert.Equal(t, []string{apiclient.LoginPath}, redirects)
	})

	t.Run("権限のない操作はセッションを破棄する", func(t *testing.T) {
		t.Parallel()
		apis, store, rec := newConsole(t)
		ctx := context.Background()

		resp, err := apis.Auth.Register(ctx, model.RegisterRequest{
			Username: "alice", Email: "alice@example.com", Password: "secret",
		})
		require.NoError(t, err)
		require.NoError(t, api.Establish(ctx, store, resp))

		_, err = apis.UserManagement.ListUsers(ctx, 1, 20)
		require.ErrorIs(t, err, apiclient.ErrSessionExpired)
		assert.False(t, store.Snapshot().LoggedIn())
		_, redirects := rec.snapshot()
		assert.Equal(t, []string{apiclient.LoginPath}, redirects)
	})

	t.Run("ログイン失敗は通知せずにエラーを返す", func(t *testing.T) {
		t.Parallel()
		apis, store, rec := newConsole(t)

		_, err := apis.Auth.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "nope"})
		var appErr *apiclient.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
		assert.Equal(t, "invalid username or password", appErr.Message)

		assert.False(t, store.Snapshot().LoggedIn())
		notified, redirects := rec.snapshot()
		assert.Empty(t, notified)
		assert.Empty(t, redirects)
	})

	t.Run("アプリケーションエラーは通知される", func(t *testing.T) {
		t.Parallel()
		apis, store, rec := newConsole(t)
		ctx := context.Background()
		loginAs(t, apis, store, "admin", "admin")

		_, err := apis.Role.CreateRole(ctx, model.CreateRoleRequest{Name: "viewer", Scope: model.RoleScopeProject})
		var appErr *apiclient.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 409, appErr.Code)

		notified, redirects := rec.snapshot()
		assert.Equal(t, []string{"already exists"}, notified)
		assert.Empty(t, redirects)
		assert.True(t, store.Snapshot().LoggedIn())
	})

	t.Run("組織を作成して選択できる", func(t *testing.T) {
		t.Parallel()
		apis, store, _ := newConsole(t)
		ctx := context.Background()
		loginAs(t, apis, store, "admin", "admin")

		org, err := apis.Organization.CreateOrganization(ctx, model.CreateOrganizationRequest{Name: "acme"})
		require.NoError(t, err)
		require.NoError(t, store.SetCurrentOrganization(ctx, org.ID))

		got, err := apis.Organization.GetOrganization(ctx, store.CurrentOrganization())
		require.NoError(t, err)
		assert.Equal(t, "acme", got.Name)
	})
}
