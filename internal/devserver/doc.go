// Package devserver はコンソール開発用のバックエンドを提供する。
//
// 本番バックエンドと同じエンベロープ形式 {code, detail|errMsg} で応答し、
// ユーザー・ロール・IDプロバイダー・組織のAPIを /api/v1 配下に持つ。
// データはSQLiteに保存し、パスワードはbcryptでハッシュ化する。
// ログアウトしたトークンは失効として記録され、以降は4406を返す。
package devserver
