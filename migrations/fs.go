// Package migrations embeds the SQL migration files.
package migrations

import "embed"

// FS holds the goose migration scripts.
//
//go:embed *.sql
var FS embed.FS
