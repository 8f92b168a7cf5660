package migrations

import "embed"

// FS holds the schema for every supported driver, one directory per driver name.
//
//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
