package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSessionInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{CodeTokenExpired, true},
		{CodeForbidden, true},
		{CodeTokenRevoked, true},
		{CodeOK, false},
		{CodeBadRequest, false},
		{CodeInternal, false},
		{4400, false},
		{401, false},
		{403, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSessionInvalid(tt.code), "code=%d", tt.code)
	}
}

func TestOK(t *testing.T) {
	t.Parallel()

	t.Run("detailがシリアライズされること", func(t *testing.T) {
		t.Parallel()

		env, err := OK(map[string]string{"token": "abc"})
		require.NoError(t, err)
		assert.Equal(t, CodeOK, env.Code)
		assert.JSONEq(t, `{"token":"abc"}`, string(env.Detail))

		raw, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":200,"detail":{"token":"abc"}}`, string(raw))
	})

	t.Run("シリアライズできない値でエラーが返ること", func(t *testing.T) {
		t.Parallel()

		_, err := OK(make(chan int))
		assert.Error(t, err)
	})
}

func TestFail(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Fail(CodeBadRequest, "invalid field"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":400,"errMsg":"invalid field"}`, string(raw))
}
