package apiclient

import (
	"errors"
	"fmt"
)

// SessionExpiredMessage はセッション無効時に呼び出し元へ返すメッセージ。
const SessionExpiredMessage = "Session expired, please login again"

// ErrSessionExpired はセッション無効を表すセンチネルエラー。
// errors.Is で判定できる。
var ErrSessionExpired = errors.New(SessionExpiredMessage)

// SessionExpiredError はエンベロープのコードが 4401/4403/4406 だった場合のエラー。
// メッセージは常に SessionExpiredMessage となる。
type SessionExpiredError struct {
	// Code はバックエンドが返したセッション無効コード。
	Code int
	// Reason はバックエンドが返したerrMsg。呼び出し元へは表示しない。
	Reason string
}

func (e *SessionExpiredError) Error() string { return SessionExpiredMessage }

func (e *SessionExpiredError) Unwrap() error { return ErrSessionExpired }

// ApplicationError はセッション無効以外の失敗コードを表す。
// メッセージはエンベロープのerrMsgそのもの。
type ApplicationError struct {
	// Code はバックエンドが返した結果コード。
	Code int
	// Message はバックエンドが返したerrMsg。
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// HTTPError はHTTPステータスが2xx以外だった場合の転送レベルのエラー。
// この場合エンベロープのデコードは行わない。
type HTTPError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, string(e.Body))
}

// StatusCode はエラーチェーンからHTTPステータスコードを取り出す。
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
