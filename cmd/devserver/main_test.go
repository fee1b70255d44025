package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig は一時ディレクトリに設定ファイルを書き出してパスを返す。
func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("ctxが終了すると正常に停止する", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "log_level: error\ndevserver:\n  port: \"0\"\n  db_path: \":memory:\"\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, run(ctx, []string{"-config", path}))
	})

	t.Run("不正な設定はエラーを返す", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "log_level: error\ndevserver:\n  token_ttl: -1s\n")
		err := run(context.Background(), []string{"-config", path})
		assert.ErrorContains(t, err, "token_ttl")
	})

	t.Run("存在しない設定ファイルはエラーを返す", func(t *testing.T) {
		t.Parallel()

		err := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
		assert.Error(t, err)
	})

	t.Run("未知のフラグはエラーを返す", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, run(context.Background(), []string{"-unknown"}))
	})
}
