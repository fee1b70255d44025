package apiclient

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout はリクエストのタイムアウトを設定する。
// 渡されたHTTPクライアントは変更せず、複製に設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithTokenSource はアクセストークンの取得元を設定する。
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithSessionClearer はセッション破棄処理を設定する。
func WithSessionClearer(sc SessionClearer) Option {
	return func(c *Client) {
		if sc != nil {
			c.session = sc
		}
	}
}

// WithNotifier はエラー通知先を設定する。
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator はログイン画面への誘導処理を設定する。
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLogger はロガーを設定する。
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics はリクエストのメトリクスをregに登録する。
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newMetrics(reg)
	}
}

// RequestOption はリクエスト単位の設定を変更する。
type RequestOption func(*requestConfig)

type requestConfig struct {
	silence bool
	headers http.Header
}

// Silence はアプリケーションエラー時の通知を抑止する。
// セッション無効時のセッション破棄と誘導は抑止されない。
func Silence() RequestOption {
	return func(rc *requestConfig) {
		rc.silence = true
	}
}

// WithHeader はリクエストヘッダーを追加する。
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Set(key, value)
	}
}

func newRequestConfig(opts []RequestOption) *requestConfig {
	rc := &requestConfig{headers: make(http.Header)}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}
