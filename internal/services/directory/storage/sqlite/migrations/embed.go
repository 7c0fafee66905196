package migrations

import "embed"

// FS contains embedded SQLite migrations for user-directory storage.
//
//go:embed *.sql
var FS embed.FS
