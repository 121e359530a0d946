// Package migrations embeds the local SQLite schema the CLI applies with
// goose on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
