// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セキュリティヘッダーの付与、CORS、リクエストボディの解析、リクエストログ、
// リクエストIDの払い出し、そしてハンドラで発生したエラーやパニックを
// 統一されたJSONエラーレスポンスに変換する終端のエラーハンドラを含む。
package middleware
