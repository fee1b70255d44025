// Package apiclient はArcentraバックエンドを呼び出す認証付きAPIクライアントを提供する。
//
// 送信時にはセッションのアクセストークンをBearer認証ヘッダーとして付与し、
// 受信時にはレスポンスエンベロープ（{code, detail|errMsg}）を一度だけデコードして
// 呼び出し元にはdetailのみを返す。セッション無効コード（4401/4403/4406）や
// HTTP 401/403を受け取った場合は、ローカルセッションを破棄してログイン画面へ誘導する。
//
// トークンストア、セッション破棄、通知、画面遷移はすべてインターフェースとして
// コンストラクタに注入する。グローバル状態は持たない。
package apiclient
