// Package logging はサービス共通のロガーを生成する。
//
// logrusを用いて標準出力に構造化ログを出力する。開発環境では人間が読みやすい
// テキスト形式、それ以外の環境ではログ基盤に取り込みやすいJSON形式を使う。
package logging
