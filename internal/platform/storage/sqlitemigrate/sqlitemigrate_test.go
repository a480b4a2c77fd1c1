package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsInOrderOnce(t *testing.T) {
	sqlDB := openTestDB(t)

	fsys := fstest.MapFS{
		"0001_first.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE widgets;
`)},
		"0002_second.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
ALTER TABLE widgets ADD COLUMN label TEXT NOT NULL DEFAULT '';
-- +migrate Down
`)},
	}

	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Re-applying must be a no-op.
	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}

	if _, err := sqlDB.Exec(`INSERT INTO widgets (id, label) VALUES ('w1', 'one')`); err != nil {
		t.Fatalf("expected migrated schema to accept insert: %v", err)
	}

	var applied int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", applied)
	}
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	content := `-- +migrate Up
CREATE TABLE a (id TEXT);
-- +migrate Down
DROP TABLE a;
`
	up := ExtractUpMigration(content)
	if up != "\nCREATE TABLE a (id TEXT);\n" {
		t.Fatalf("unexpected up section: %q", up)
	}

	plain := "CREATE TABLE b (id TEXT);"
	if got := ExtractUpMigration(plain); got != plain {
		t.Fatalf("expected unmarked content returned verbatim, got %q", got)
	}
}

func TestApplyMigrationsToleratesExistingSchema(t *testing.T) {
	sqlDB := openTestDB(t)

	if _, err := sqlDB.Exec(`CREATE TABLE widgets (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("prepare schema: %v", err)
	}

	fsys := fstest.MapFS{
		"0001_first.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
`)},
	}
	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("apply over existing schema: %v", err)
	}
}
