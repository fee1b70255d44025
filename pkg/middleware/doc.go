// Package middleware は開発用バックエンドで使用するGinミドルウェアを提供する。
//
// JWT認証トークンの検証、パニックリカバリ、CORS設定を含む。
// 認証エラーはArcentraのエンベロープ形式で返し、トークン期限切れ(4401)、
// 権限不足(4403)、失効済みトークン(4406)をコードで区別する。
package middleware
