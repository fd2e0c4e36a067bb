// Package gateway はLets-Go-WorkSpace APIのGatewayサービスを提供する。
//
// セキュリティヘッダー、CORS、ボディ解析、リクエストログの各ミドルウェアを
// 固定の順序で適用し、ヘルスチェックと404応答を提供する。ハンドラで発生した
// 失敗は終端のエラーハンドラで統一されたJSONエラーに変換される。
//
// サーバーのライフサイクルは Running → Draining → Stopped の状態機械で管理する。
// 終了シグナルを受け取ると新規接続の受け付けを止め、処理中のリクエストの完了を
// ShutdownTimeoutまで待つ。待機中に再度シグナルを受け取るか、タイムアウトした場合は
// 残りの接続を強制的に切断する。
package gateway
