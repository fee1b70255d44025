package apiclient

// TokenSource は現在のアクセストークンを返す。
// トークンが存在しない場合は空文字列を返す。
type TokenSource interface {
	AccessToken() string
}

// SessionClearer はローカルのセッション状態を破棄する。
// 何度呼び出しても同じ結果になること（冪等）が求められる。
type SessionClearer interface {
	ClearSession()
}

// Notifier はユーザー向けのエラー通知を表示する。
type Notifier interface {
	Error(message string)
}

// Navigator は利用者を指定パスへ誘導する。
type Navigator interface {
	Redirect(path string)
}

// LoginPath はセッション無効時の誘導先。
const LoginPath = "/login"

type noopCollaborator struct{}

func (noopCollaborator) AccessToken() string { return "" }
func (noopCollaborator) ClearSession()       {}
func (noopCollaborator) Error(string)        {}
func (noopCollaborator) Redirect(string)     {}
