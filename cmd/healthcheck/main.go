// コンテナのヘルスチェック用コマンドのエントリポイント。
// ローカルのGatewayサービスの GET /api/health を呼び出し、status が success でなければ終了コード1で終了する。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/letsgo-workspace/internal/config"
	"github.com/nao1215/letsgo-workspace/pkg/httpclient"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		return 1
	}

	baseURL := flag.String("url", "http://127.0.0.1:"+cfg.Port, "GatewayサービスのベースURL")
	timeout := flag.Duration("timeout", 3*time.Second, "ヘルスチェックのタイムアウト")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = httpclient.WithRequestID(ctx, "healthcheck-"+uuid.NewString())

	health, err := httpclient.New(*baseURL).Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ヘルスチェックに失敗: %v\n", err)
		return 1
	}
	fmt.Printf("%s: %s (%s)\n", health.Status, health.Message, health.Timestamp)
	return 0
}
