package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSConfig はCORSミドルウェアの設定。
type CORSConfig struct {
	// AllowedOrigins はクロスオリジンリクエストを許可するオリジンの一覧。
	AllowedOrigins []string
	// AllowCredentials はCookie等の資格情報付きリクエストを許可するかどうか。
	AllowCredentials bool
}

// corsAllowMethods はプリフライトで許可するHTTPメソッド。
const corsAllowMethods = "GET, HEAD, PUT, PATCH, POST, DELETE"

// corsDefaultAllowHeaders はプリフライトでリクエストヘッダーが指定されなかった場合に許可するヘッダー。
const corsDefaultAllowHeaders = "Authorization, Content-Type"

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// 許可リストに無いオリジンにはAccess-Control-Allow-Originを返さない。
// OPTIONSリクエストはプリフライトとして204で応答し、後続のハンドラは呼ばない。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	originsSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		originsSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Writer.Header().Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		_, allowed := originsSet[origin]
		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			if allowed {
				c.Header("Access-Control-Allow-Methods", corsAllowMethods)
				allowHeaders := c.GetHeader("Access-Control-Request-Headers")
				if allowHeaders == "" {
					allowHeaders = corsDefaultAllowHeaders
				} else {
					c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
				}
				c.Header("Access-Control-Allow-Headers", allowHeaders)
				c.Header("Access-Control-Max-Age", "86400")
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
