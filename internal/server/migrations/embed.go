// Package migrations embeds the PostgreSQL schema applied by goose when the
// identity store runs on PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
