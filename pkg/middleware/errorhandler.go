package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// errorResponse はエラー発生時のレスポンスボディ。
type errorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorHandler はハンドラやミドルウェアで発生した失敗を統一されたJSONエラーに変換するGinミドルウェアを返す。
// チェーンの先頭に登録し、パニック、Handleが返したエラー、c.Errorで積まれたエラーのいずれも捕捉する。
// ステータスコードはStatusOfで決定する。レスポンスが既に書き込まれている場合はログ出力のみ行う。
func ErrorHandler(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := panicError(r)
				logger.WithFields(requestFields(c)).Errorf("[PANIC] %v", r)
				respondError(c, logger, err)
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			respondError(c, logger, last.Err)
		}
	}
}

// respondError はエラーをログに出力し、未送信であればエラーレスポンスを書き込む。
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status := StatusOf(err)
	logger.WithFields(requestFields(c)).WithField("status", status).Error(err.Error())

	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Status:    "error",
		Message:   err.Error(),
		Timestamp: Timestamp(),
	})
}

// panicError はrecoverで得た値をerrorに変換する。
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// requestFields はログに付与するリクエスト情報を返す。
func requestFields(c *gin.Context) logrus.Fields {
	return logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": GetRequestID(c),
	}
}
