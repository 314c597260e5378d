// Package migrations embeds the goose SQL migrations for the sqlite tier.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
