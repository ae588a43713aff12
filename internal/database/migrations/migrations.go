// Package migrations はバイナリに埋め込むスキーマ定義です。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
