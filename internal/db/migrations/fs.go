// Package migrations embeds the goose SQL migrations for the lobby database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
