package session

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/arcentra/console/pkg/logger"
	"github.com/arcentra/console/pkg/migration"
	"github.com/arcentra/console/pkg/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// State はセッションのスナップショット。
type State struct {
	// AccessToken は現在のBearerトークン。未ログインなら空。
	AccessToken string
	// User はログインユーザーの情報。未ログインならnil。
	User *model.UserInfo
	// Role はログインユーザーのロール。
	Role string
	// OrganizationID は選択中の組織ID。セッション破棄後も保持する。
	OrganizationID string
}

// LoggedIn はトークンを保持しているかどうかを返す。
func (s State) LoggedIn() bool {
	return s.AccessToken != ""
}

// Store はセッション状態のストア。複数のゴルーチンから同時に使用できる。
type Store struct {
	mu    sync.RWMutex
	state State
	// db はnilの場合メモリ上のみで保持する。
	db  *sql.DB
	log logrus.FieldLogger
}

// Option はStoreの設定を変更する。
type Option func(*Store)

// WithLogger はロガーを設定する。
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewMemoryStore は永続化しないストアを生成する。
func NewMemoryStore(opts ...Option) *Store {
	s := &Store{log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open はpathのSQLiteファイルに永続化するストアを生成する。
// pathが空の場合はNewMemoryStoreと同じ。
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := NewMemoryStore(opts...)
	if path == "" {
		return s, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("セッションディレクトリの作成に失敗: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("セッションデータベース接続に失敗: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migration.Run(ctx, db, migrations, "migrations", s.log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("セッションスキーマの初期化に失敗: %w", err)
	}

	state, err := load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	s.state = state
	return s, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AccessToken は現在のアクセストークンを返す。
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// Snapshot は現在の状態のコピーを返す。
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// CurrentOrganization は選択中の組織IDを返す。
func (s *Store) CurrentOrganization() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.OrganizationID
}

// SetTokens はログイン成功時にアクセストークンを保存する。
func (s *Store) SetTokens(ctx context.Context, token string) error {
	return s.update(ctx, func(st *State) {
		st.AccessToken = token
	})
}

// SetUser はログインユーザーの情報とロールを保存する。
func (s *Store) SetUser(ctx context.Context, user model.UserInfo, role string) error {
	return s.update(ctx, func(st *State) {
		st.User = &user
		st.Role = role
	})
}

// SetCurrentOrganization は選択中の組織を切り替える。
func (s *Store) SetCurrentOrganization(ctx context.Context, id string) error {
	return s.update(ctx, func(st *State) {
		st.OrganizationID = id
	})
}

// ClearSession はトークンとユーザー情報を破棄する。選択中の組織は残す。
// 何度呼び出しても結果は同じ。メモリ上の状態は必ず破棄し、
// 永続化に失敗した場合はログに記録するだけで元に戻さない。
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AccessToken = ""
	s.state.User = nil
	s.state.Role = ""
	if s.db == nil {
		return
	}
	if err := save(context.Background(), s.db, s.state); err != nil {
		s.log.WithError(err).Error("セッションの破棄を永続化できませんでした")
	}
}

// update はロックを保持したまま状態を変更し、永続化する。
// 永続化に失敗した場合はメモリ上の状態を元に戻す。
func (s *Store) update(ctx context.Context, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	fn(&s.state)
	if s.db == nil {
		return nil
	}
	if err := save(ctx, s.db, s.state); err != nil {
		s.state = prev
		return err
	}
	return nil
}

func load(ctx context.Context, db *sql.DB) (State, error) {
	var st State
	var userInfo string
	err := db.QueryRowContext(ctx,
		"SELECT access_token, user_info, role, organization_id FROM session WHERE id = 1",
	).Scan(&st.AccessToken, &userInfo, &st.Role, &st.OrganizationID)
	if err != nil {
		return State{}, fmt.Errorf("セッションの読み込みに失敗: %w", err)
	}

	if userInfo != "" {
		var u model.UserInfo
		if err := json.Unmarshal([]byte(userInfo), &u); err != nil {
			return State{}, fmt.Errorf("ユーザー情報のデシリアライズに失敗: %w", err)
		}
		st.User = &u
	}
	return st, nil
}

func save(ctx context.Context, db *sql.DB, st State) error {
	var userInfo string
	if st.User != nil {
		raw, err := json.Marshal(st.User)
		if err != nil {
			return fmt.Errorf("ユーザー情報のシリアライズに失敗: %w", err)
		}
		userInfo = string(raw)
	}

	_, err := db.ExecContext(ctx, `
		UPDATE session
		SET access_token = ?, user_info = ?, role = ?, organization_id = ?, updated_at = datetime('now')
		WHERE id = 1`,
		st.AccessToken, userInfo, st.Role, st.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("セッションの保存に失敗: %w", err)
	}
	return nil
}
