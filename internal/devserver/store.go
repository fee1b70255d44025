package devserver

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/arcentra/console/pkg/migration"
	"github.com/arcentra/console/pkg/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// errNotFound は対象のレコードが存在しないことを示す。
	errNotFound = errors.New("レコードが見つかりません")
	// errConflict は一意制約に違反したことを示す。
	errConflict = errors.New("既に存在します")
)

// store は開発サーバーの永続化層。
type store struct {
	db *sql.DB
}

// openStore はSQLiteデータベースを開き、マイグレーションを適用する。
func openStore(ctx context.Context, path string, log logrus.FieldLogger) (*store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := migration.Run(ctx, db, migrations, "migrations", log); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &store{db: db}, nil
}

// Close はデータベース接続を閉じる。
func (s *store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// wrapConstraint は一意制約違反をerrConflictに変換する。
func wrapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errConflict
	}
	return err
}

// ---- users ----

// userRecord はパスワードハッシュを含むユーザー行。
type userRecord struct {
	model.User
	PasswordHash string
}

// info はログインユーザー向けの情報に変換する。
func (u userRecord) info() model.UserInfo {
	return model.UserInfo{
		UserID:    u.UserID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
	}
}

const userColumns = `id, username, email, first_name, last_name, phone, avatar, role,
	password_hash, is_enabled, is_super_admin, invitation_status, created_at, updated_at, last_login_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (userRecord, error) {
	var (
		u         userRecord
		role      string
		invite    string
		lastLogin sql.NullString
	)
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Avatar, &role,
		&u.PasswordHash, &u.IsEnabled, &u.IsSuperAdmin, &invite, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return userRecord{}, errNotFound
	}
	if err != nil {
		return userRecord{}, err
	}
	u.Role = model.UserRole(role)
	u.InvitationStatus = model.InvitationStatus(invite)
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.String
	}
	return u, nil
}

// createUser はユーザーを作成する。IDが空なら採番する。
func (s *store) createUser(ctx context.Context, u userRecord) (userRecord, error) {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = model.UserRoleUser
	}
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts
	_, err := s.db.ExecContext(ctx, `INSERT INTO users
		(id, username, email, first_name, last_name, phone, avatar, role,
		 password_hash, is_enabled, is_super_admin, invitation_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, u.Username, u.Email, u.FirstName, u.LastName, u.Phone, u.Avatar, string(u.Role),
		u.PasswordHash, u.IsEnabled, u.IsSuperAdmin, string(u.InvitationStatus), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return userRecord{}, wrapConstraint(err)
	}
	return u, nil
}

func (s *store) userByID(ctx context.Context, id string) (userRecord, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *store) userByUsername(ctx context.Context, username string) (userRecord, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// listUsers は作成日時順にユーザーを返す。limitが0以下なら全件。
func (s *store) listUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, username LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u.User)
	}
	return users, total, rows.Err()
}

// updateUser は指定されたフィールドのみ更新する。
func (s *store) updateUser(ctx context.Context, id string, req model.UpdateUserRequest) (userRecord, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET
		username = COALESCE(?, username),
		email = COALESCE(?, email),
		first_name = COALESCE(?, first_name),
		last_name = COALESCE(?, last_name),
		phone = COALESCE(?, phone),
		role = COALESCE(?, role),
		is_enabled = COALESCE(?, is_enabled),
		updated_at = ?
		WHERE id = ?`,
		req.Username, req.Email, req.FirstName, req.LastName, req.Phone, req.Role, req.IsEnabled, now(), id)
	if err := checkAffected(res, wrapConstraint(err)); err != nil {
		return userRecord{}, err
	}
	return s.userByID(ctx, id)
}

// updateUserInfo はユーザー自身のプロフィールを更新する。
func (s *store) updateUserInfo(ctx context.Context, id string, req model.UpdateUserInfoRequest) (userRecord, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET
		first_name = COALESCE(?, first_name),
		last_name = COALESCE(?, last_name),
		email = COALESCE(?, email),
		phone = COALESCE(?, phone),
		avatar = COALESCE(?, avatar),
		updated_at = ?
		WHERE id = ?`,
		req.FirstName, req.LastName, req.Email, req.Phone, req.Avatar, now(), id)
	if err := checkAffected(res, err); err != nil {
		return userRecord{}, err
	}
	return s.userByID(ctx, id)
}

func (s *store) setPassword(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now(), id)
	return checkAffected(res, err)
}

func (s *store) touchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, now(), id)
	return err
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

// ---- revoked tokens ----

// revokeToken はトークンIDを失効済みとして記録する。
func (s *store) revokeToken(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (token_id, revoked_at) VALUES (?, ?)`, tokenID, now())
	return err
}

// IsRevoked はトークンIDが失効済みかどうかを返す。
func (s *store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?`, tokenID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- roles ----

const roleColumns = `id, role_id, name, display_name, description, scope, org_id,
	is_builtin, is_enabled, priority, permissions, created_by, created_at, updated_at`

func scanRole(row scanner) (model.Role, error) {
	var (
		r     model.Role
		scope string
		perms string
	)
	err := row.Scan(&r.ID, &r.RoleID, &r.Name, &r.DisplayName, &r.Description, &scope, &r.OrgID,
		&r.IsBuiltin, &r.IsEnabled, &r.Priority, &perms, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, errNotFound
	}
	if err != nil {
		return model.Role{}, err
	}
	r.Scope = model.RoleScope(scope)
	if err := json.Unmarshal([]byte(perms), &r.Permissions); err != nil {
		return model.Role{}, fmt.Errorf("権限の読み取りに失敗: %w", err)
	}
	return r, nil
}

func encodePermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// createRole はロールを作成する。
func (s *store) createRole(ctx context.Context, req model.CreateRoleRequest, createdBy string, builtin bool) (model.Role, error) {
	perms, err := encodePermissions(req.Permissions)
	if err != nil {
		return model.Role{}, err
	}
	ts := now()
	_, err = s.db.ExecContext(ctx, `INSERT INTO roles
		(role_id, name, display_name, description, scope, org_id, is_builtin, is_enabled,
		 priority, permissions, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`,
		uuid.New().String(), req.Name, req.DisplayName, req.Description, string(req.Scope), req.OrgID,
		boolToInt(builtin), req.Priority, perms, createdBy, ts, ts)
	if err != nil {
		return model.Role{}, wrapConstraint(err)
	}
	return s.role(ctx, req.Name)
}

// role はロールIDまたは名前でロールを取得する。
func (s *store) role(ctx context.Context, idOrName string) (model.Role, error) {
	return scanRole(s.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE role_id = ? OR name = ?`, idOrName, idOrName))
}

// listRoles は優先度順にロールを返す。scopeが空なら全スコープ。
func (s *store) listRoles(ctx context.Context, scope string, limit, offset int) ([]model.Role, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM roles WHERE (? = '' OR scope = ?)`, scope, scope).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles
		WHERE (? = '' OR scope = ?) ORDER BY priority DESC, id LIMIT ? OFFSET ?`,
		scope, scope, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, 0, err
		}
		roles = append(roles, r)
	}
	return roles, total, rows.Err()
}

// updateRole は指定されたフィールドのみ更新する。
func (s *store) updateRole(ctx context.Context, idOrName string, req model.UpdateRoleRequest) (model.Role, error) {
	current, err := s.role(ctx, idOrName)
	if err != nil {
		return model.Role{}, err
	}
	var perms *string
	if req.Permissions != nil {
		p, err := encodePermissions(req.Permissions)
		if err != nil {
			return model.Role{}, err
		}
		perms = &p
	}
	_, err = s.db.ExecContext(ctx, `UPDATE roles SET
		name = COALESCE(?, name),
		display_name = COALESCE(?, display_name),
		description = COALESCE(?, description),
		scope = COALESCE(?, scope),
		priority = COALESCE(?, priority),
		permissions = COALESCE(?, permissions),
		is_enabled = COALESCE(?, is_enabled),
		updated_at = ?
		WHERE role_id = ?`,
		req.Name, req.DisplayName, req.Description, req.Scope, req.Priority, perms, req.IsEnabled,
		now(), current.RoleID)
	if err != nil {
		return model.Role{}, wrapConstraint(err)
	}
	return s.role(ctx, current.RoleID)
}

// toggleRole はロールの有効・無効を反転する。
func (s *store) toggleRole(ctx context.Context, idOrName string) (model.Role, error) {
	current, err := s.role(ctx, idOrName)
	if err != nil {
		return model.Role{}, err
	}
	enabled := 1 - current.IsEnabled
	return s.updateRole(ctx, current.RoleID, model.UpdateRoleRequest{IsEnabled: &enabled})
}

func (s *store) deleteRole(ctx context.Context, roleID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE role_id = ?`, roleID)
	return checkAffected(res, err)
}

// ---- identity providers ----

const providerColumns = `id, name, provider_type, config, description, priority, is_enabled, created_at, updated_at`

func scanProvider(row scanner) (model.IdentityProvider, error) {
	var (
		p      model.IdentityProvider
		typ    string
		config string
	)
	err := row.Scan(&p.ID, &p.Name, &typ, &config, &p.Description, &p.Priority, &p.IsEnabled,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.IdentityProvider{}, errNotFound
	}
	if err != nil {
		return model.IdentityProvider{}, err
	}
	p.ProviderType = model.ProviderType(typ)
	if err := json.Unmarshal([]byte(config), &p.Config); err != nil {
		return model.IdentityProvider{}, fmt.Errorf("プロバイダー設定の読み取りに失敗: %w", err)
	}
	return p, nil
}

func encodeConfig(config map[string]any) (string, error) {
	if config == nil {
		config = map[string]any{}
	}
	b, err := json.Marshal(config)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *store) createProvider(ctx context.Context, req model.CreateIdentityProviderRequest) (model.IdentityProvider, error) {
	config, err := encodeConfig(req.Config)
	if err != nil {
		return model.IdentityProvider{}, err
	}
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	ts := now()
	_, err = s.db.ExecContext(ctx, `INSERT INTO identity_providers
		(name, provider_type, config, description, priority, is_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name, string(req.ProviderType), config, req.Description, req.Priority, boolToInt(enabled), ts, ts)
	if err != nil {
		return model.IdentityProvider{}, wrapConstraint(err)
	}
	return s.provider(ctx, req.Name)
}

func (s *store) provider(ctx context.Context, name string) (model.IdentityProvider, error) {
	return scanProvider(s.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM identity_providers WHERE name = ?`, name))
}

// listProviders は優先度順にプロバイダーを返す。typが空なら全種類。
func (s *store) listProviders(ctx context.Context, typ string) ([]model.IdentityProvider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+providerColumns+` FROM identity_providers
		WHERE (? = '' OR provider_type = ?) ORDER BY priority DESC, id`, typ, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := []model.IdentityProvider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (s *store) updateProvider(ctx context.Context, name string, req model.UpdateIdentityProviderRequest) (model.IdentityProvider, error) {
	var config *string
	if req.Config != nil {
		c, err := encodeConfig(req.Config)
		if err != nil {
			return model.IdentityProvider{}, err
		}
		config = &c
	}
	var enabled *int
	if req.IsEnabled != nil {
		v := boolToInt(*req.IsEnabled)
		enabled = &v
	}
	res, err := s.db.ExecContext(ctx, `UPDATE identity_providers SET
		name = COALESCE(?, name),
		provider_type = COALESCE(?, provider_type),
		config = COALESCE(?, config),
		description = COALESCE(?, description),
		priority = COALESCE(?, priority),
		is_enabled = COALESCE(?, is_enabled),
		updated_at = ?
		WHERE name = ?`,
		req.Name, req.ProviderType, config, req.Description, req.Priority, enabled, now(), name)
	if err := checkAffected(res, wrapConstraint(err)); err != nil {
		return model.IdentityProvider{}, err
	}
	if req.Name != nil {
		name = *req.Name
	}
	return s.provider(ctx, name)
}

func (s *store) deleteProvider(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM identity_providers WHERE name = ?`, name)
	return checkAffected(res, err)
}

// ---- organizations ----

const organizationColumns = `id, name, description, logo, plan, created_at, updated_at`

func scanOrganization(row scanner) (model.Organization, error) {
	var (
		o    model.Organization
		plan string
	)
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Logo, &plan, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Organization{}, errNotFound
	}
	if err != nil {
		return model.Organization{}, err
	}
	o.Plan = model.OrganizationPlan(plan)
	return o, nil
}

func (s *store) createOrganization(ctx context.Context, req model.CreateOrganizationRequest) (model.Organization, error) {
	id := uuid.New().String()
	ts := now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO organizations
		(id, name, description, logo, plan, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, req.Name, req.Description, req.Logo, string(model.PlanFree), ts, ts)
	if err != nil {
		return model.Organization{}, wrapConstraint(err)
	}
	return s.organization(ctx, id)
}

func (s *store) organization(ctx context.Context, id string) (model.Organization, error) {
	return scanOrganization(s.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id))
}

func (s *store) listOrganizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []model.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (s *store) updateOrganization(ctx context.Context, id string, req model.UpdateOrganizationRequest) (model.Organization, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE organizations SET
		name = COALESCE(?, name),
		description = COALESCE(?, description),
		logo = COALESCE(?, logo),
		plan = COALESCE(?, plan),
		updated_at = ?
		WHERE id = ?`,
		req.Name, req.Description, req.Logo, req.Plan, now(), id)
	if err := checkAffected(res, wrapConstraint(err)); err != nil {
		return model.Organization{}, err
	}
	return s.organization(ctx, id)
}

func (s *store) deleteOrganization(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	return checkAffected(res, err)
}
