package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arcentra/console/pkg/envelope"
)

// Outcome はデコード済みエンベロープの結果。
// Success, SessionInvalid, ApplicationFailure のいずれか。
type Outcome interface {
	outcome()
}

// Success はcodeが200のレスポンス。
type Success struct {
	// Detail はdetailフィールドの生JSON。存在しない場合はnil。
	Detail json.RawMessage
}

// SessionInvalid はcodeがセッション無効コードのレスポンス。
type SessionInvalid struct {
	Code    int
	Message string
}

// ApplicationFailure はそれ以外の失敗コードのレスポンス。
type ApplicationFailure struct {
	Code    int
	Message string
}

func (Success) outcome()            {}
func (SessionInvalid) outcome()     {}
func (ApplicationFailure) outcome() {}

// Decode はレスポンスボディをエンベロープとしてデコードする。
func Decode(body []byte) (Outcome, error) {
	var env struct {
		Code   *int            `json:"code"`
		Detail json.RawMessage `json:"detail"`
		ErrMsg string          `json:"errMsg"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("レスポンスエンベロープのデシリアライズに失敗: %w", err)
	}
	if env.Code == nil {
		return nil, fmt.Errorf("レスポンスエンベロープにcodeがありません")
	}

	code := *env.Code
	switch {
	case code == envelope.CodeOK:
		return Success{Detail: env.Detail}, nil
	case envelope.IsSessionInvalid(code):
		return SessionInvalid{Code: code, Message: env.ErrMsg}, nil
	default:
		return ApplicationFailure{Code: code, Message: env.ErrMsg}, nil
	}
}

// unmarshalDetail はdetailをresultにデシリアライズする。
// resultがnil、またはdetailが存在しない場合は何もしない。
func unmarshalDetail(detail json.RawMessage, result any) error {
	if result == nil || len(detail) == 0 || bytes.Equal(detail, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(detail, result); err != nil {
		return fmt.Errorf("detailのデシリアライズに失敗: %w", err)
	}
	return nil
}
