package envelope

import (
	"encoding/json"
	"fmt"
)

const (
	// CodeOK は成功を表すコード。
	CodeOK = 200
	// CodeBadRequest はリクエスト内容が不正であることを表す。
	CodeBadRequest = 400
	// CodeNotFound は対象リソースが存在しないことを表す。
	CodeNotFound = 404
	// CodeConflict は既存リソースとの競合を表す。
	CodeConflict = 409
	// CodeInternal はサーバー内部エラーを表す。
	CodeInternal = 500
	// CodeTokenExpired はトークンが無効または期限切れであることを表す。
	CodeTokenExpired = 4401
	// CodeForbidden はセッションに操作権限がないことを表す。
	CodeForbidden = 4403
	// CodeTokenRevoked はトークンが失効済み（ログアウト済み）であることを表す。
	CodeTokenRevoked = 4406
)

// Envelope はバックエンドのレスポンスボディ。
type Envelope struct {
	// Code はアプリケーションレベルの結果コード。
	Code int `json:"code"`
	// Detail は成功時のペイロード。
	Detail json.RawMessage `json:"detail,omitempty"`
	// ErrMsg は失敗時のエラーメッセージ。
	ErrMsg string `json:"errMsg,omitempty"`
}

// IsSessionInvalid はコードがセッション無効を表すかどうかを返す。
// 対象は 4401, 4403, 4406 の3つのみ。
func IsSessionInvalid(code int) bool {
	switch code {
	case CodeTokenExpired, CodeForbidden, CodeTokenRevoked:
		return true
	default:
		return false
	}
}

// OK はdetailをシリアライズして成功レスポンスを生成する。
func OK(detail any) (Envelope, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return Envelope{}, fmt.Errorf("detailのシリアライズに失敗: %w", err)
	}
	return Envelope{Code: CodeOK, Detail: raw}, nil
}

// Fail は失敗レスポンスを生成する。
func Fail(code int, msg string) Envelope {
	return Envelope{Code: code, ErrMsg: msg}
}
