package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TimestampLayout はレスポンスに含めるタイムスタンプの書式（ミリ秒精度のISO 8601, UTC）。
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp は現在時刻をTimestampLayoutで整形して返す。
func Timestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// StatusCoder はHTTPステータスコードを持つエラーが実装するインターフェース。
type StatusCoder interface {
	StatusCode() int
}

// HTTPError はHTTPステータスコードを伴うエラー。
// ハンドラがこのエラーを返すと、ErrorHandlerはそのステータスコードでレスポンスを返す。
type HTTPError struct {
	// Status はレスポンスのHTTPステータスコード。
	Status int
	// Message はクライアントに返すエラーメッセージ。
	Message string
	// Err は原因となったエラー。
	Err error
}

// NewError は指定したステータスコードとメッセージを持つHTTPErrorを生成する。
func NewError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// WrapError は既存のエラーにステータスコードを付与する。
func WrapError(status int, err error) *HTTPError {
	return &HTTPError{Status: status, Err: err}
}

// Error はエラーメッセージを返す。
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

// StatusCode はHTTPステータスコードを返す。
func (e *HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap は原因となったエラーを返す。
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusOf はエラーに対応するHTTPステータスコードを返す。
// エラーチェーン中にStatusCoderが無い、またはエラー系のステータスでない場合は500を返す。
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if status := sc.StatusCode(); status >= 400 && status <= 599 {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Handle はエラーを返すハンドラをGinのハンドラに変換する。
// 返されたエラーはコンテキストに積まれ、ErrorHandlerがレスポンスに変換する。
func Handle(h func(c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}
