// Lets-Go-WorkSpace APIのGatewayサービスのエントリポイント。
// 設定とロガーを初期化してHTTPサーバーを起動し、SIGTERM/SIGINTでグレースフルシャットダウンする。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/letsgo-workspace/internal/config"
	"github.com/nao1215/letsgo-workspace/internal/gateway"
	"github.com/nao1215/letsgo-workspace/pkg/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(signals)

	server := gateway.NewServer(cfg, logger)
	if err := server.Run(context.Background(), signals); err != nil {
		logger.Fatalf("Gatewayサービスの実行に失敗: %v", err)
	}
}
