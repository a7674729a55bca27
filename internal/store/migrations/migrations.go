// Package migrations embeds the SQL migration files for the client state DB.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
