package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/letsgo-workspace/internal/config"
	"github.com/nao1215/letsgo-workspace/pkg/middleware"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testCORSOrigin はテスト用の許可オリジン。
const testCORSOrigin = "http://localhost:3000"

// newTestConfig はテスト用の設定を生成する。
func newTestConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		CORSOrigin:      testCORSOrigin,
		Environment:     "test",
		ShutdownTimeout: 5 * time.Second,
		BodyLimit:       config.DefaultBodyLimit,
		LogLevel:        "info",
	}
}

// newTestServer はテスト用のGatewayサーバーを生成する。
func newTestServer(t *testing.T) (*Server, *logtest.Hook) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	return NewServer(newTestConfig(), logger), hook
}

// doRequest はサーバーにリクエストを送り、レスポンスを返す。
func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// TestHandleHealth はヘルスチェックハンドラのテスト。
func TestHandleHealth(t *testing.T) {
	t.Parallel()

	t.Run("200とsuccessステータスを返す", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		before := time.Now().Add(-time.Second)
		w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		var body healthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if body.Status != "success" {
			t.Errorf("status: got %q, want %q", body.Status, "success")
		}
		if body.Message != "Server is running" {
			t.Errorf("message: got %q, want %q", body.Message, "Server is running")
		}
		ts, err := time.Parse(time.RFC3339, body.Timestamp)
		if err != nil {
			t.Fatalf("timestampが解釈できない: %q", body.Timestamp)
		}
		if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
			t.Errorf("timestampが現在時刻ではない: %v", ts)
		}
		if !strings.HasSuffix(body.Timestamp, "Z") {
			t.Errorf("timestampがUTCではない: %q", body.Timestamp)
		}
		if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
			t.Errorf("Content-Type: got %q", got)
		}
	})

	t.Run("HEADリクエストにも200を返す", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		w := doRequest(s, httptest.NewRequest(http.MethodHead, "/api/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("セキュリティヘッダーとリクエストIDが付与される", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options: got %q, want %q", got, "nosniff")
		}
		if got := w.Header().Get("Strict-Transport-Security"); got == "" {
			t.Error("Strict-Transport-Securityが設定されていない")
		}
		if got := w.Header().Get(middleware.HeaderRequestID); got == "" {
			t.Error("X-Request-IDが設定されていない")
		}
	})

	t.Run("メソッドとパスがログに出力される", func(t *testing.T) {
		t.Parallel()

		s, hook := newTestServer(t)
		doRequest(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		found := false
		for _, entry := range hook.AllEntries() {
			if entry.Message == "GET /api/health" {
				found = true
			}
		}
		if !found {
			t.Error("リクエストログが出力されていない")
		}
	})
}

// TestHandleNotFound は404ハンドラのテスト。
func TestHandleNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		target   string
		wantPath string
	}{
		{name: "未定義のパス", method: http.MethodGet, target: "/api/unknown", wantPath: "/api/unknown"},
		{name: "未実装のユーザーAPI", method: http.MethodPost, target: "/api/users", wantPath: "/api/users"},
		{name: "ヘルスチェックへのPOST", method: http.MethodPost, target: "/api/health", wantPath: "/api/health"},
		{name: "ヘルスチェックへのDELETE", method: http.MethodDelete, target: "/api/health", wantPath: "/api/health"},
		{name: "末尾スラッシュ付きのパス", method: http.MethodGet, target: "/api/health/", wantPath: "/api/health/"},
		{name: "クエリ文字列はパスに含まれない", method: http.MethodGet, target: "/api/rooms?page=2", wantPath: "/api/rooms"},
		{name: "エンコードされたパスはそのまま返る", method: http.MethodGet, target: "/api/rooms/a%2Fb", wantPath: "/api/rooms/a%2Fb"},
		{name: "ルート", method: http.MethodGet, target: "/", wantPath: "/"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestServer(t)
			w := doRequest(s, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != http.StatusNotFound {
				t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
			}

			var body notFoundResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("レスポンスのパースに失敗: %v", err)
			}
			if body.Status != "error" {
				t.Errorf("status: got %q, want %q", body.Status, "error")
			}
			if body.Message != "Route not found" {
				t.Errorf("message: got %q, want %q", body.Message, "Route not found")
			}
			if body.Path != tt.wantPath {
				t.Errorf("path: got %q, want %q", body.Path, tt.wantPath)
			}
		})
	}

	t.Run("404レスポンスにもセキュリティヘッダーが付与される", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

		if got := w.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
			t.Errorf("X-Frame-Options: got %q, want %q", got, "SAMEORIGIN")
		}
	})
}

// errorResponseBody はエラーレスポンスのボディ。
type errorResponseBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TestErrorHandling はハンドラで発生した失敗がエラーレスポンスに変換されることのテスト。
func TestErrorHandling(t *testing.T) {
	t.Parallel()

	newServerWithFailingRoutes := func(t *testing.T) *Server {
		t.Helper()

		s, _ := newTestServer(t)
		s.router.GET("/test/panic", func(_ *gin.Context) {
			panic("boom")
		})
		s.router.GET("/test/error", middleware.Handle(func(_ *gin.Context) error {
			return errors.New("database unavailable")
		}))
		s.router.POST("/test/bad-request", middleware.Handle(func(_ *gin.Context) error {
			return middleware.NewError(http.StatusBadRequest, "invalid booking")
		}))
		s.router.GET("/test/forward", func(c *gin.Context) {
			_ = c.Error(middleware.NewError(http.StatusUnauthorized, "login required"))
		})
		return s
	}

	tests := []struct {
		name        string
		method      string
		target      string
		wantStatus  int
		wantMessage string
	}{
		{name: "パニックは500になる", method: http.MethodGet, target: "/test/panic", wantStatus: http.StatusInternalServerError, wantMessage: "boom"},
		{name: "ステータスを持たないエラーは500になる", method: http.MethodGet, target: "/test/error", wantStatus: http.StatusInternalServerError, wantMessage: "database unavailable"},
		{name: "ステータスを持つエラーはそのステータスになる", method: http.MethodPost, target: "/test/bad-request", wantStatus: http.StatusBadRequest, wantMessage: "invalid booking"},
		{name: "転送されたエラーはそのステータスになる", method: http.MethodGet, target: "/test/forward", wantStatus: http.StatusUnauthorized, wantMessage: "login required"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newServerWithFailingRoutes(t)
			w := doRequest(s, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ステータスコード: got %d, want %d", w.Code, tt.wantStatus)
			}

			var body errorResponseBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("レスポンスのパースに失敗: %v", err)
			}
			if body.Status != "error" {
				t.Errorf("status: got %q, want %q", body.Status, "error")
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message: got %q, want %q", body.Message, tt.wantMessage)
			}
			if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
				t.Errorf("timestampが解釈できない: %q", body.Timestamp)
			}
		})
	}

	t.Run("不正なJSONボディは400になる", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		w := doRequest(s, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("上限を超えるボディは413になる", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig()
		cfg.BodyLimit = 8
		logger, _ := logtest.NewNullLogger()
		s := NewServer(cfg, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/health", strings.NewReader(`{"key":"value"}`))
		req.Header.Set("Content-Type", "application/json")
		w := doRequest(s, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
		}
	})
}

// TestCORSPolicy はGatewayに適用されたCORSポリシーのテスト。
func TestCORSPolicy(t *testing.T) {
	t.Parallel()

	t.Run("許可オリジンからのプリフライトに資格情報付きのヘッダーが返る", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
		req.Header.Set("Origin", testCORSOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := doRequest(s, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != testCORSOrigin {
			t.Errorf("Access-Control-Allow-Origin: got %q, want %q", got, testCORSOrigin)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials: got %q, want %q", got, "true")
		}
	})

	t.Run("未設定のオリジンにはAllow-Originが返らない", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		for _, method := range []string{http.MethodOptions, http.MethodGet} {
			req := httptest.NewRequest(method, "/api/health", nil)
			req.Header.Set("Origin", "https://attacker.example")
			w := doRequest(s, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Errorf("%s: Access-Control-Allow-Origin: got %q, want empty string", method, got)
			}
		}
	})
}
