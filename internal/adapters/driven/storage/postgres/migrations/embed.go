// Package migrations embeds the PostgreSQL schema migrations.
// Scripts are text/template documents; {{.Dimensions}} is the embedding vector size.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
