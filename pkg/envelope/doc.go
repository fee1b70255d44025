// Package envelope はArcentraバックエンドのレスポンス形式を定義する。
//
// すべてのレスポンスは {code, detail|errMsg} の形をとる。code が 200 の場合は
// detail に結果が入り、それ以外の場合は errMsg にエラーメッセージが入る。
// APIクライアントと開発用バックエンドの双方がこのパッケージを共有する。
package envelope
