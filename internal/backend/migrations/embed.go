// Package migrations embeds the SQL schema of the catalog backend.
package migrations

import "embed"

// FS holds the golang-migrate files, applied by bootstrap.Migrate.
//
//go:embed *.sql
var FS embed.FS
