// Package migrations embeds the SQL schema history for golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
