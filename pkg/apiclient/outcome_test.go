package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want Outcome
	}{
		{
			name: "code200はSuccessになること",
			body: `{"code":200,"detail":{"id":1}}`,
			want: Success{Detail: json.RawMessage(`{"id":1}`)},
		},
		{
			name: "detailがない成功レスポンス",
			body: `{"code":200}`,
			want: Success{},
		},
		{
			name: "4401はSessionInvalidになること",
			body: `{"code":4401,"errMsg":"token expired"}`,
			want: SessionInvalid{Code: 4401, Message: "token expired"},
		},
		{
			name: "4403はSessionInvalidになること",
			body: `{"code":4403,"errMsg":"forbidden"}`,
			want: SessionInvalid{Code: 4403, Message: "forbidden"},
		},
		{
			name: "4406はSessionInvalidになること",
			body: `{"code":4406,"errMsg":"revoked"}`,
			want: SessionInvalid{Code: 4406, Message: "revoked"},
		},
		{
			name: "その他のコードはApplicationFailureになること",
			body: `{"code":4400,"errMsg":"nope"}`,
			want: ApplicationFailure{Code: 4400, Message: "nope"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("codeがないボディはエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte(`{"detail":{}}`))
		assert.Error(t, err)
	})

	t.Run("不正なJSONはエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte(`{invalid`))
		assert.Error(t, err)
	})
}

func TestUnmarshalDetail(t *testing.T) {
	t.Parallel()

	t.Run("nullのdetailではresultが変化しないこと", func(t *testing.T) {
		t.Parallel()

		result := map[string]int{"keep": 1}
		require.NoError(t, unmarshalDetail(json.RawMessage("null"), &result))
		assert.Equal(t, map[string]int{"keep": 1}, result)
	})

	t.Run("型が合わない場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		var n int
		assert.Error(t, unmarshalDetail(json.RawMessage(`"text"`), &n))
	})
}
