// generate_schema applies every migration to an in-memory database and writes
// the resulting schema to internal/database/sqlc/schema.sql, where sqlc and
// the test helpers read it. With -check it only reports whether the file is
// current.
package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ftl-go/internal/database"
	"ftl-go/internal/database/migrations"
)

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "sqlc", "schema.sql"), "schema file, relative to the module root")
	check := flag.Bool("check", false, "fail when the schema file is stale instead of writing it")
	flag.Parse()

	schema, err := generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}

	if *check {
		current, err := os.ReadFile(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
			os.Exit(1)
		}
		if !bytes.Equal(current, []byte(schema)) {
			fmt.Fprintf(os.Stderr, "%s is stale, run `go generate ./internal/database`\n", *out)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*out, []byte(schema), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s from migrations\n", *out)
}

func generate() (string, error) {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return "", fmt.Errorf("migrating: %w", err)
	}
	version, err := migrations.LatestVersion()
	if err != nil {
		return "", err
	}

	stmts, err := extractSchema(db)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Generated from internal/database/migrations/files at version %d.\n", version)
	b.WriteString("-- DO NOT EDIT. Run `go generate ./internal/database` to regenerate.\n\n")
	for _, stmt := range stmts {
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	return b.String(), nil
}

// extractSchema returns the CREATE statements of every table, index and
// trigger, tables first. SQLite internals and the migration bookkeeping
// table are left out.
func extractSchema(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT sql
		FROM sqlite_master
		WHERE type IN ('table', 'index', 'trigger')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type WHEN 'table' THEN 1 WHEN 'index' THEN 2 ELSE 3 END,
		  name
	`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("scanning schema row: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}
