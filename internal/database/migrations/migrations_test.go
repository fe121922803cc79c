package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	tables := []string{
		"input_files", "revisions", "revision_files", "pages", "page_attributes",
		"routes", "templates", "dependencies", "outputs", "state", "builds",
		"schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)

		err := CheckDBMigrationStatus(db)
		if err == nil {
			t.Fatal("CheckDBMigrationStatus() expected error for fresh database, got nil")
		}
		if !strings.Contains(err.Error(), "needs migration") {
			t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err)
		}
	})

	t.Run("migrated database is current", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() failed: %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
		}

		version, dirty, err := Version(db)
		if err != nil {
			t.Fatalf("Version() error = %v", err)
		}
		latest, err := LatestVersion()
		if err != nil {
			t.Fatalf("LatestVersion() error = %v", err)
		}
		if version != latest || dirty {
			t.Errorf("Version() = %d (dirty %v), want %d", version, dirty, latest)
		}
	})
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_Constraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	mustExec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.Exec(q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec("INSERT INTO input_files (id, path, hash, size, created_at) VALUES ('a', 'content/a.md', 'h1', 1, datetime('now'))")
	mustExec("INSERT INTO input_files (id, path, hash, size, created_at) VALUES ('b', 'content/b.md', 'h2', 1, datetime('now'))")
	mustExec("INSERT INTO revisions (id, created_at) VALUES ('r1', datetime('now'))")

	t.Run("path and hash are unique", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO input_files (id, path, hash, size, created_at) VALUES ('c', 'content/a.md', 'h1', 1, datetime('now'))")
		if err == nil {
			t.Error("expected unique constraint violation on (path, hash)")
		}
	})

	t.Run("dependencies reject self loops", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO dependencies (revision, parent, child, relation) VALUES ('r1', 'a', 'a', 1)")
		if err == nil {
			t.Error("expected check constraint violation for parent = child")
		}
	})

	t.Run("routes are unique per revision", func(t *testing.T) {
		mustExec("INSERT INTO routes (revision, id, route, kind) VALUES ('r1', 'a', '/x', 3)")
		_, err := db.Exec("INSERT INTO routes (revision, id, route, kind) VALUES ('r1', 'b', '/x', 3)")
		if err == nil {
			t.Error("expected unique constraint violation on (revision, route)")
		}
	})

	t.Run("routes require a known input", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO routes (revision, id, route, kind) VALUES ('r1', 'missing', '/y', 3)")
		if err == nil {
			t.Error("expected foreign key violation for unknown input")
		}
	})

	t.Run("deleting a revision cascades and clears the pointer", func(t *testing.T) {
		mustExec("INSERT INTO revision_files (revision, id) VALUES ('r1', 'a')")
		mustExec("INSERT INTO state (singleton, current_revision) VALUES (1, 'r1')")
		mustExec("DELETE FROM revisions WHERE id = 'r1'")

		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM routes WHERE revision = 'r1'").Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("routes left after delete = %d, want 0", n)
		}
		var current sql.NullString
		if err := db.QueryRow("SELECT current_revision FROM state").Scan(&current); err != nil {
			t.Fatal(err)
		}
		if current.Valid {
			t.Errorf("current_revision = %q, want NULL", current.String)
		}
	})
}

// openTestDB opens an in-memory SQLite database with foreign keys enabled.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
