// Package httpclient はGatewayサービスのHTTP APIを呼び出すクライアントを提供する。
//
// コンテナのヘルスチェックコマンドなど、サービスの外側からAPIの状態を確認する際に使用する。
// コンテキストに設定したリクエストIDはX-Request-IDヘッダーとして伝播する。
package httpclient
