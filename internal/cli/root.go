package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcentra/console/internal/config"
	"github.com/arcentra/console/pkg/api"
	"github.com/arcentra/console/pkg/apiclient"
	"github.com/arcentra/console/pkg/logger"
	"github.com/arcentra/console/pkg/session"
)

// app はコマンド実行中に共有する状態。
type app struct {
	// configFile は--configで指定された設定ファイル。
	configFile string
	// apiURL は--api-urlで指定されたURL。空なら設定値を使う。
	apiURL string

	out    io.Writer
	errOut io.Writer

	cfg      *config.Config
	log      *logrus.Logger
	store    *session.Store
	apis     *api.Apis
	notifier *stderrNotifier
}

// stderrNotifier はアプリケーションエラーをエラー出力に表示する。
type stderrNotifier struct {
	mu       sync.Mutex
	w        io.Writer
	notified bool
}

func (n *stderrNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = true
	fmt.Fprintf(n.w, "error: %s\n", msg)
}

func (n *stderrNotifier) hasNotified() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notified
}

// loginPrompt はセッション無効時に再ログインを一度だけ促す。
type loginPrompt struct {
	once sync.Once
	w    io.Writer
}

func (p *loginPrompt) Redirect(string) {
	p.once.Do(func() {
		fmt.Fprintf(p.w, "%s: run `arcentra login`\n", apiclient.SessionExpiredMessage)
	})
}

// newRootCommand はarcentraコマンドと、その実行状態を生成する。
func newRootCommand(out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "arcentra",
		Short:         "Arcentra console on the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL, e.g. http://localhost:8080/api/v1")

	root.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newAuthorizeURLCommand(a),
		newCallbackCommand(a),
		newUsersCommand(a),
		newRolesCommand(a),
		newProvidersCommand(a),
		newOrgsCommand(a),
	)
	return root, a
}

// init は設定を読み込み、セッションとAPIクライアントを組み立てる。
func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	a.cfg = cfg
	a.log = logger.NewWithOutput(cfg.LogLevel, a.errOut)

	store, err := session.Open(ctx, cfg.SessionPath, session.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.store = store

	a.notifier = &stderrNotifier{w: a.errOut}
	client := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithTokenSource(store),
		apiclient.WithSessionClearer(store),
		apiclient.WithNotifier(a.notifier),
		apiclient.WithNavigator(&loginPrompt{w: a.errOut}),
		apiclient.WithLogger(a.log),
	)
	a.apis = api.New(client)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	store := a.store
	a.store = nil
	return store.Close()
}

// requireLogin はログインしていなければエラーを返す。
func (a *app) requireLogin() error {
	if !a.store.Snapshot().LoggedIn() {
		return errors.New("not logged in: run `arcentra login`")
	}
	return nil
}

// Execute はコマンドを実行し、終了コードを返す。
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root, a := newRootCommand(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	// 失敗時はPersistentPostRunEが呼ばれないため、ここで閉じる
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(errOut, "error: %v\n", cerr)
	}
	if reported(a, err) {
		return 1
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return 1
}

// reported はエラーが既に利用者へ表示済みかどうかを返す。
func reported(a *app, err error) bool {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return true
	}
	var appErr *apiclient.ApplicationError
	return errors.As(err, &appErr) && a.notifier != nil && a.notifier.hasNotified()
}
