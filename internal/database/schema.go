package database

import _ "embed"

// Schema is the current schema as produced by running every migration.
// Tests apply it directly to in-memory databases.
//
//go:embed sqlc/schema.sql
var Schema string
