// 開発用バックエンドのエントリポイント。
// コンソールと同じエンベロープ形式で応答するAPIサーバーをローカルに起動する。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arcentra/console/internal/config"
	"github.com/arcentra/console/internal/devserver"
	"github.com/arcentra/console/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		logger.New("info").WithError(err).Error("開発サーバーが異常終了しました")
		os.Exit(1)
	}
}

// run は設定を読み込んで開発サーバーを起動し、ctxが終了するまで待つ。
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	configFile := fs.String("config", "", "設定ファイルのパス")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	// 初期化はシグナルで中断しない
	server, err := devserver.NewServer(context.WithoutCancel(ctx), cfg.DevServer, log)
	if err != nil {
		return fmt.Errorf("開発サーバーの初期化に失敗: %w", err)
	}
	defer server.Close()

	log.WithField("port", cfg.DevServer.Port).Info("開発サーバーを起動します")
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("開発サーバーの起動に失敗: %w", err)
	}
	log.Info("開発サーバーを停止しました")
	return nil
}
