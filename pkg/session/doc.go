// Package session はコンソールのローカルセッション状態を保持する。
//
// Store はアクセストークン、ログインユーザーの情報、選択中の組織を保持し、
// APIクライアントに TokenSource / SessionClearer として注入される。
// Open で生成した場合はSQLiteに永続化され、別プロセスからも同じ状態を参照できる。
package session
