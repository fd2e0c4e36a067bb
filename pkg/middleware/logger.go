package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger はリクエストのメソッドとパスをログに出力するGinミドルウェアを返す。
// 処理完了後のステータスコードと処理時間はdebugレベルで出力する。
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := logger.WithFields(requestFields(c))
		entry.Info(fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path))

		c.Next()

		entry.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("リクエスト処理完了")
	}
}
