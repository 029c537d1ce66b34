// Package migrations embeds the versioned PostgreSQL schema. Files are named
// <version>_<name>.sql with an optional <version>_<name>_rollback.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
