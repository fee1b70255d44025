// arcentraコマンドのエントリポイント。
// Arcentraのユーザー・ロール・IDプロバイダー・組織をコマンドラインから操作する。
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/arcentra/console/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
