package api

import (
	"context"
	"fmt"

	"github.com/arcentra/console/pkg/model"
)

// SessionWriter はログイン結果を保存する先。
type SessionWriter interface {
	SetTokens(ctx context.Context, token string) error
	SetUser(ctx context.Context, user model.UserInfo, role string) error
}

// Establish はログイン・登録・コールバックの結果をセッションに保存する。
func Establish(ctx context.Context, w SessionWriter, resp *model.LoginResponse) error {
	if resp == nil || resp.Token == "" {
		return fmt.Errorf("レスポンスにトークンが含まれていません")
	}
	if err := w.SetUser(ctx, resp.UserInfo, resp.Role); err != nil {
		return fmt.Errorf("ユーザー情報の保存に失敗: %w", err)
	}
	if err := w.SetTokens(ctx, resp.Token); err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}
