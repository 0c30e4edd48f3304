package db

import "embed"

// One directory per goose dialect.
//
//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS
