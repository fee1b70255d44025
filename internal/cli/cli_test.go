package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcentra/console/internal/config"
	"github.com/arcentra/console/internal/devserver"
	"github.com/arcentra/console/pkg/apiclient"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// console はテスト用の開発サーバーと、それを向いた設定ファイルの組。
type console struct {
	t          *testing.T
	configPath string
}

// startServer は開発サーバーを起動し、APIのベースURLを返す。
func startServer(t *testing.T, secret string) string {
	t.Helper()

	srv, err := devserver.NewServer(context.Background(), config.DevServerConfig{
		Port:          "0",
		DBPath:        ":memory:",
		JWTSecret:     secret,
		TokenTTL:      time.Hour,
		AdminPassword: "admin",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api/v1"
}

// newConsole は開発サーバーと、セッションを一時ディレクトリに保存する設定を用意する。
func newConsole(t *testing.T) *console {
	t.Helper()

	dir := t.TempDir()
	cfg := fmt.Sprintf("api_url: %s\nsession_path: %s\nlog_level: error\n",
		startServer(t, "cli-secret"), filepath.Join(dir, "session.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &console{t: t, configPath: path}
}

// run はarcentraコマンドを実行し、標準出力・エラー出力・終了コードを返す。
func (c *console) run(args ...string) (stdout, stderr string, code int) {
	c.t.Helper()

	var out, errOut bytes.Buffer
	code = Execute(context.Background(), append([]string{"--config", c.configPath}, args...), &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun は成功を前提にコマンドを実行し、標準出力を返す。
func (c *console) mustRun(args ...string) string {
	c.t.Helper()

	out, errOut, code := c.run(args...)
	require.Equal(c.t, 0, code, "stderr: %s", errOut)
	return out
}

func TestLoginSession(t *testing.T) {
	t.Parallel()

	t.Run("ログイン状態がコマンドをまたいで保持される", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)

		out := c.mustRun("login", "-u", "admin", "-p", "admin")
		assert.Equal(t, "Logged in as admin (admin)\n", out)

		out = c.mustRun("whoami")
		assert.Contains(t, out, "Username:")
		assert.Contains(t, out, "admin@localhost")

		out = c.mustRun("logout")
		assert.Equal(t, "Logged out\n", out)

		_, errOut, code := c.run("whoami")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "not logged in")
	})

	t.Run("パスワードを標準入力から読む", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)

		root, _ := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
		root.SetArgs([]string{"--config", c.configPath, "login", "-u", "admin"})
		root.SetIn(strings.NewReader("admin\n"))
		require.NoError(t, root.ExecuteContext(context.Background()))

		out := c.mustRun("whoami")
		assert.Contains(t, out, "admin")
	})

	t.Run("ログイン失敗は一度だけ表示される", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)

		_, errOut, code := c.run("login", "-u", "admin", "-p", "wrong")
		assert.Equal(t, 1, code)
		assert.Equal(t, 1, strings.Count(errOut, "invalid username or password"), errOut)
	})

	t.Run("登録するとログイン状態になる", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)

		out := c.mustRun("register", "-u", "alice", "--email", "alice@example.com", "-p", "secret")
		assert.Equal(t, "Logged in as alice (user)\n", out)
	})

	t.Run("セッションが無効になると再ログインを一度だけ促す", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)
		c.mustRun("login", "-u", "admin", "-p", "admin")

		// 別の秘密鍵を持つサーバーではトークンが検証できない
		other := startServer(t, "other-secret")
		_, errOut, code := c.run("--api-url", other, "whoami")
		assert.Equal(t, 1, code)
		assert.Equal(t, 1, strings.Count(errOut, apiclient.SessionExpiredMessage), errOut)
		assert.Contains(t, errOut, "run `arcentra login`")

		_, errOut, code = c.run("whoami")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "not logged in")
	})
}

func TestAuthorizeURL(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	out := c.mustRun("authorize-url", "github", "--redirect-uri", "http://localhost:5173/cb")
	assert.Contains(t, out, "/api/v1/identity/authorize/github?redirect_uri=http%3A%2F%2Flocalhost%3A5173%2Fcb")
}

func TestUsersCommands(t *testing.T) {
	t.Parallel()

	t.Run("招待したユーザーが一覧に出る", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)
		c.mustRun("login", "-u", "admin", "-p", "admin")

		out := c.mustRun("users", "invite", "bob@example.com", "--role", "viewer")
		assert.Equal(t, "Invited bob@example.com\n", out)

		out = c.mustRun("users", "list", "--role", "viewer")
		assert.Contains(t, out, "bob@example.com")
		assert.NotContains(t, out, "admin@localhost")
		assert.Contains(t, out, "pending")
		assert.Contains(t, out, "1 of 2 users")
	})

	t.Run("重複した招待はエラーを一度だけ表示する", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)
		c.mustRun("login", "-u", "admin", "-p", "admin")
		c.mustRun("users", "invite", "bob@example.com")

		_, errOut, code := c.run("users", "invite", "bob@example.com")
		assert.Equal(t, 1, code)
		assert.Equal(t, 1, strings.Count(errOut, "user already exists"), errOut)
	})

	t.Run("パスワードを変更して再ログインできる", func(t *testing.T) {
		t.Parallel()
		c := newConsole(t)
		c.mustRun("register", "-u", "carol", "--email", "carol@example.com", "-p", "secret")

		c.mustRun("users", "passwd", "--old", "secret", "--new", "changed")
		c.mustRun("logout")
		out := c.mustRun("login", "-u", "carol", "-p", "changed")
		assert.Equal(t, "Logged in as carol (user)\n", out)
	})
}

func TestRolesCommands(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.mustRun("login", "-u", "admin", "-p", "admin")

	out := c.mustRun("roles", "list", "--scope", "project")
	assert.Contains(t, out, "developer")
	assert.NotContains(t, out, "Administrator")
	assert.Contains(t, out, "scopes: org, project")

	out = c.mustRun("roles", "permissions", "viewer", "--set", "project:read,project:audit")
	assert.Equal(t, "project:read\nproject:audit\n", out)

	out = c.mustRun("roles", "get", "viewer")
	assert.Contains(t, out, "project:read, project:audit")

	out = c.mustRun("roles", "toggle", "viewer")
	assert.Equal(t, "Role viewer is now disabled\n", out)

	_, errOut, code := c.run("roles", "delete", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "role not found: missing")
}

func TestProvidersCommands(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.mustRun("login", "-u", "admin", "-p", "admin")

	out := c.mustRun("providers", "types")
	assert.Equal(t, "oauth\nldap\noidc\nsaml\n", out)

	out = c.mustRun("providers", "list")
	assert.Equal(t, "NAME  TYPE  STATUS  PRIORITY  DESCRIPTION\n", out)
}

func TestOrgsCommands(t *testing.T) {
	t.Parallel()

	c := newConsole(t)
	c.mustRun("login", "-u", "admin", "-p", "admin")

	out := c.mustRun("orgs", "current")
	assert.Equal(t, "No organization selected\n", out)

	out = c.mustRun("orgs", "create", "acme")
	id, name, ok := strings.Cut(strings.TrimSpace(out), "\t")
	require.True(t, ok, out)
	assert.Equal(t, "acme", name)

	out = c.mustRun("orgs", "switch", id)
	assert.Equal(t, "Switched to acme\n", out)

	out = c.mustRun("orgs", "list")
	assert.Contains(t, out, "*  "+id)

	// ログアウトしても選択中の組織は残る
	c.mustRun("logout")
	out = c.mustRun("orgs", "current")
	assert.Equal(t, id+"\n", out)
}
