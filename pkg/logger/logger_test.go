package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	t.Parallel()

	t.Run("JSON形式でフィールド名が変換されること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := NewWithOutput("debug", &buf)
		log.WithField("path", "/users/me").Warn("[RESPONSE ERROR]")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "[RESPONSE ERROR]", entry["message"])
		assert.Equal(t, "warning", entry["level"])
		assert.Equal(t, "/users/me", entry["path"])
		assert.Contains(t, entry, "timestamp")
	})

	t.Run("不正なレベルはinfoになること", func(t *testing.T) {
		t.Parallel()

		log := NewWithOutput("verbose", &bytes.Buffer{})
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	})
}
