package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout はリクエストのデフォルトタイムアウト。
const DefaultTimeout = 60 * time.Second

// Client はArcentraバックエンド用の認証付きHTTPクライアント。
// 複数のゴルーチンから同時に使用できる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はバックエンドのベースURL（例: "http://localhost:8080/api/v1"）。
	baseURL string
	// tokens はアクセストークンの取得元。
	tokens TokenSource
	// session はセッション無効時に呼び出すセッション破棄処理。
	session SessionClearer
	// notifier はアプリケーションエラーの通知先。
	notifier Notifier
	// navigator はセッション無効時の誘導先。
	navigator Navigator
	// logger はレスポンスエラーの記録に使用する。
	logger logrus.FieldLogger
	// metrics はnilの場合は記録しない。
	metrics *metrics
}

// New は新しいAPIクライアントを生成する。
// 協調オブジェクトを指定しなかった場合は何もしない実装が使われる。
func New(baseURL string, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:   baseURL,
		tokens:    noopCollaborator{},
		session:   noopCollaborator{},
		notifier:  noopCollaborator{},
		navigator: noopCollaborator{},
		logger:    discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL はバックエンドのベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON は指定パスにGETリクエストを送信し、detailをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, result, opts)
}

// PostJSON は指定パスにPOSTリクエストを送信し、detailをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, result, opts)
}

// PutJSON は指定パスにPUTリクエストを送信し、detailをresultにデシリアライズする。
func (c *Client) PutJSON(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, result, opts)
}

// DeleteJSON は指定パスにDELETEリクエストを送信し、detailをresultにデシリアライズする。
func (c *Client) DeleteJSON(ctx context.Context, path string, result any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, result, opts)
}

// do はリクエストの送信からエンベロープの解釈までを行う共通処理。
func (c *Client) do(ctx context.Context, method, path string, body, result any, opts []RequestOption) error {
	started := time.Now()
	rc := newRequestConfig(opts)

	req, err := c.newRequest(ctx, method, path, body, rc)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, outcomeTransportError, started)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(method, outcomeTransportError, started)
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observe(method, outcomeTransportError, started)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.expireSession(path, resp.StatusCode)
		}
		return &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
	}

	outcome, err := Decode(respBody)
	if err != nil {
		c.metrics.observe(method, outcomeTransportError, started)
		return err
	}

	switch o := outcome.(type) {
	case Success:
		c.metrics.observe(method, outcomeSuccess, started)
		return unmarshalDetail(o.Detail, result)
	case SessionInvalid:
		c.metrics.observe(method, outcomeSessionInvalid, started)
		c.logResponseError(path, o.Code, o.Message)
		c.expireSession(path, o.Code)
		return &SessionExpiredError{Code: o.Code, Reason: o.Message}
	case ApplicationFailure:
		c.metrics.observe(method, outcomeApplicationError, started)
		c.logResponseError(path, o.Code, o.Message)
		if !rc.silence && o.Message != "" {
			c.notifier.Error(o.Message)
		}
		return &ApplicationError{Code: o.Code, Message: o.Message}
	default:
		return fmt.Errorf("未知のレスポンス種別: %T", outcome)
	}
}

// newRequest はHTTPリクエストを組み立てる。
// トークンはここで一度だけ読み取り、このリクエストのヘッダーに固定する。
func (c *Client) newRequest(ctx context.Context, method, path string, body any, rc *requestConfig) (*http.Request, error) {
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		bodyReader = b
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range rc.headers {
		req.Header[key] = values
	}

	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// expireSession はローカルセッションを破棄してログイン画面へ誘導する。
// 同時に複数のリクエストから呼ばれても結果は変わらない。
func (c *Client) expireSession(path string, code int) {
	c.logger.WithFields(logrus.Fields{
		"path": path,
		"code": code,
	}).Info("セッションが無効になったためログイン画面へ誘導します")
	c.session.ClearSession()
	c.navigator.Redirect(LoginPath)
}

func (c *Client) logResponseError(path string, code int, msg string) {
	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"code":   code,
		"errMsg": msg,
	}).Warn("[RESPONSE ERROR]")
}
