package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// contextKeyBody はGinコンテキストに解析済みボディを格納するためのキー。
const contextKeyBody = "body"

// BodyParser はJSONおよびURLエンコードされたフォームのリクエストボディを解析するGinミドルウェアを返す。
// 解析結果はGetBodyで取得できる。元のボディは読み直せるように差し戻す。
// limitを超えるボディは413、解析できないボディは400としてErrorHandlerに転送する。
func BodyParser(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		contentType := c.ContentType()
		if contentType != gin.MIMEJSON && contentType != gin.MIMEPOSTForm {
			c.Next()
			return
		}

		data, err := readBody(c.Request, limit)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(data))

		var body any
		if contentType == gin.MIMEJSON {
			body, err = parseJSONBody(data)
		} else {
			body, err = parseFormBody(c.Request, data)
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(contextKeyBody, body)
		c.Next()
	}
}

// GetBody はBodyParserが解析したリクエストボディを取得する。
// JSONの場合はmap[string]anyまたは[]any、フォームの場合はurl.Valuesを返す。
func GetBody(c *gin.Context) (any, bool) {
	return c.Get(contextKeyBody)
}

// readBody はボディをlimitバイトまで読み込む。
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.ContentLength > limit {
		return nil, NewError(http.StatusRequestEntityTooLarge, "request entity too large")
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, WrapError(http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, NewError(http.StatusRequestEntityTooLarge, "request entity too large")
	}
	return data, nil
}

// parseJSONBody はJSONボディを解析する。
// トップレベルはオブジェクトまたは配列のみ受け付け、空のボディは空オブジェクトとして扱う。
func parseJSONBody(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, NewError(http.StatusBadRequest, "invalid JSON body: top-level value must be an object or array")
	}

	var body any
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, WrapError(http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
	}
	return body, nil
}

// parseFormBody はURLエンコードされたフォームボディを解析し、リクエストのPostFormにも反映する。
func parseFormBody(r *http.Request, data []byte) (url.Values, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, WrapError(http.StatusBadRequest, fmt.Errorf("invalid form body: %w", err))
	}
	r.PostForm = values
	return values, nil
}
