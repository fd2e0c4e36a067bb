package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/letsgo-workspace/internal/config"
	"github.com/nao1215/letsgo-workspace/pkg/middleware"
	"github.com/sirupsen/logrus"
)

// readHeaderTimeout はリクエストヘッダーの読み込みタイムアウト。
const readHeaderTimeout = 10 * time.Second

// Server はGatewayサービスのHTTPサーバー。
// リスナーの生成から停止までをRunが所有する。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// httpServer はrouterを公開するHTTPサーバー。
	httpServer *http.Server
	// cfg はサービスの設定。
	cfg *config.Config
	// logger は構造化ロガー。
	logger logrus.FieldLogger
	// lifecycle はサーバーの状態機械。
	lifecycle lifecycle
	// ready はリスナーのバインド完了時にcloseされる。
	ready chan struct{}

	mu   sync.RWMutex
	addr net.Addr
}

// healthResponse はヘルスチェックのレスポンスボディ。
type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// notFoundResponse はルートが見つからない場合のレスポンスボディ。
type notFoundResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// NewServer は新しいGatewayサーバーを生成する。
// この時点ではリッスンを開始しない。
func NewServer(cfg *config.Config, logger logrus.FieldLogger) *Server {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// ErrorHandlerは後続の全ての失敗を捕捉するため先頭に置く
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	router.Use(middleware.BodyParser(cfg.BodyLimit))
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		cfg:    cfg,
		logger: logger,
		ready:  make(chan struct{}),
	}
	s.setupRoutes()

	return s
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ヘルスチェック
	s.router.GET("/api/health", s.handleHealth())
	s.router.HEAD("/api/health", s.handleHealth())

	s.router.NoRoute(s.handleNotFound())
}

// handleHealth はヘルスチェックのハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status:    "success",
			Message:   "Server is running",
			Timestamp: middleware.Timestamp(),
		})
	}
}

// handleNotFound はどのルートにも一致しないリクエストに404を返すハンドラを返す。
func (s *Server) handleNotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFoundResponse{
			Status:  "error",
			Message: "Route not found",
			Path:    c.Request.URL.EscapedPath(),
		})
	}
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// State は現在のライフサイクル状態を返す。
func (s *Server) State() State {
	return s.lifecycle.current()
}

// Ready はリスナーのバインドが完了するとcloseされるチャネルを返す。
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はバインドしたアドレスを返す。リッスン開始前はnil。
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Run は設定されたポートでリッスンを開始し、停止するまでブロックする。
// signalsから終了シグナルを受け取るか、ctxがキャンセルされるとグレースフルシャットダウンを行う。
// シャットダウンが完了した場合はnilを返す。Runは1つのServerにつき一度だけ呼び出せる。
func (s *Server) Run(ctx context.Context, signals <-chan os.Signal) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		s.fire(EventFailed)
		return fmt.Errorf("ポート%sのリッスンに失敗: %w", s.cfg.Port, err)
	}
	return s.serve(ctx, ln, signals)
}

// serve はリスナー上でHTTPサーバーを動かし、終了イベントを待つ。
func (s *Server) serve(ctx context.Context, ln net.Listener, signals <-chan os.Signal) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.fire(EventListening)

	port := s.cfg.Port
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = strconv.Itoa(tcpAddr.Port)
	}
	s.logger.WithField("port", port).Infof("Lets-Go-WorkSpaceバックエンドサーバーをポート%sで起動しました", port)
	s.logger.WithField("environment", s.cfg.Environment).Infof("実行環境: %s", s.cfg.Environment)
	close(s.ready)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		s.fire(EventFailed)
		return fmt.Errorf("HTTPサーバーが異常終了: %w", err)
	case sig := <-signals:
		s.logger.WithField("signal", sig.String()).Info("終了シグナルを受信しました。HTTPサーバーを停止します")
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました。HTTPサーバーを停止します")
	}

	s.fire(EventSignal)
	s.drain(signals)

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.WithError(err).Error("HTTPサーバーの停止中にエラーが発生しました")
	}
	s.logger.Info("HTTPサーバーを停止しました")
	return nil
}

// drain は処理中のリクエストの完了を待つ。
// ShutdownTimeoutを超えるか、再度シグナルを受け取った場合は残りの接続を強制的に切断する。
func (s *Server) drain(signals <-chan os.Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.httpServer.Shutdown(ctx)
	}()

	var event Event
	select {
	case err := <-done:
		event = EventDrained
		if err != nil {
			s.logger.WithError(err).Warnf("処理中のリクエストが%s以内に完了しませんでした", s.cfg.ShutdownTimeout)
			event = EventDrainTimeout
		}
	case sig := <-signals:
		s.logger.WithField("signal", sig.String()).Warn("停止処理中に再度シグナルを受信しました。接続を強制的に切断します")
		event = EventSignal
		cancel()
		<-done
	}

	if _, _, force := s.fire(event); force {
		if err := s.httpServer.Close(); err != nil {
			s.logger.WithError(err).Error("接続の強制切断に失敗しました")
		}
	}
}

// fire はライフサイクルにイベントを適用し、状態が変わった場合はログに出力する。
func (s *Server) fire(event Event) (from, to State, forceClose bool) {
	from, to, forceClose = s.lifecycle.fire(event)
	if from != to {
		s.logger.WithFields(logrus.Fields{
			"event": event.String(),
			"from":  from.String(),
			"to":    to.String(),
		}).Debug("ライフサイクル状態が遷移しました")
	}
	return from, to, forceClose
}
