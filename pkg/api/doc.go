// Package api はArcentraバックエンドの各エンドポイントを型付きで呼び出す。
//
// 各サービスは Requester（通常は *apiclient.Client）を受け取り、パスの組み立て、
// パスワードのBase64エンコード、通知抑止（Silence）の指定を担当する。
package api
