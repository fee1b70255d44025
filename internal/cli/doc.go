// Package cli はarcentraコマンドのサブコマンドを実装する。
//
// セッションは設定のsession_pathに保存され、コマンドの実行をまたいで維持される。
// APIクライアントへの協調オブジェクトとして、セッションストア、エラー出力への通知、
// 再ログインを促す案内を渡す。
package cli
