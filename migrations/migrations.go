// Package migrations embeds the SQL migrations of the local client store.
package migrations

import "embed"

// FS holds goose-formatted migration files.
//
//go:embed *.sql
var FS embed.FS
