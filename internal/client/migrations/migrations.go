// Package migrations embeds the local SQLite schema applied by goose when
// the client opens its database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
