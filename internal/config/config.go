// Package config はコンソールと開発用バックエンドの設定を読み込む。
//
// 優先順位は 環境変数(ARCENTRA_*) > 設定ファイル > デフォルト値。
// ネストしたキーの区切りは環境変数では "_" になる（devserver.port → ARCENTRA_DEVSERVER_PORT）。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix は環境変数の接頭辞。
const EnvPrefix = "ARCENTRA"

// Config はアプリケーション全体の設定。
type Config struct {
	// APIURL はバックエンドAPIのベースURL。
	APIURL string `mapstructure:"api_url"`
	// Timeout はAPIリクエストのタイムアウト。
	Timeout time.Duration `mapstructure:"timeout"`
	// SessionPath はセッションを保存するSQLiteファイル。空ならメモリ上のみ。
	SessionPath string `mapstructure:"session_path"`
	// LogLevel はログレベル。
	LogLevel string `mapstructure:"log_level"`
	// DevServer は開発用バックエンドの設定。
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// DevServerConfig は開発用バックエンドの設定。
type DevServerConfig struct {
	Port        string        `mapstructure:"port"`
	DBPath      string        `mapstructure:"db_path"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	FrontendURL string        `mapstructure:"frontend_url"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	// AdminPassword は初期管理者(admin)のパスワード。
	AdminPassword string `mapstructure:"admin_password"`
}

// Load は設定を読み込む。configFileが空の場合は設定ファイルを読まない。
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定のデコードに失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url が設定されていません")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout は正の値である必要があります: %s", c.Timeout)
	}
	if c.DevServer.TokenTTL <= 0 {
		return fmt.Errorf("devserver.token_ttl は正の値である必要があります: %s", c.DevServer.TokenTTL)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080/api/v1")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("session_path", defaultSessionPath())
	v.SetDefault("log_level", "info")

	v.SetDefault("devserver.port", "8080")
	v.SetDefault("devserver.db_path", "arcentra-dev.db")
	v.SetDefault("devserver.jwt_secret", "dev-secret-key")
	v.SetDefault("devserver.frontend_url", "http://localhost:5173")
	v.SetDefault("devserver.token_ttl", 24*time.Hour)
	v.SetDefault("devserver.admin_password", "admin")
}

// defaultSessionPath はホームディレクトリ配下のセッションファイルを返す。
// ホームディレクトリが取得できない場合はメモリ上のみで保持する。
func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcentra", "session.db")
}
