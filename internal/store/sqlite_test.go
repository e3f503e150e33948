package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestNewSQLiteRunStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer store.Close()

	dbPath := filepath.Join(tmpDir, ".wgcnasim", "runs.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("runs.db was not created")
	}
	if store.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", store.Path(), dbPath)
	}
}

func TestSQLiteRunStore_Contract(t *testing.T) {
	store, err := NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestSQLiteRunStore_Reopen(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	store, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	run := testRun(t, 7)
	id, err := store.RecordRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() after reopen error = %v", err)
	}
	if got.Seed != 7 || got.MatrixChecksum != run.MatrixChecksum {
		t.Errorf("reopened run = %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestSQLiteRunStore_LargeSeed(t *testing.T) {
	store, err := NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	run := testRun(t, 1)
	run.Seed = 1<<64 - 1
	id, err := store.RecordRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	got, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Seed != 1<<64-1 {
		t.Errorf("Seed = %d, want max uint64", got.Seed)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("first InitSchema() error = %v", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("second InitSchema() error = %v", err)
	}

	version, err := getSchemaVersion(ctx, db)
	if err != nil {
		t.Fatalf("getSchemaVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}

	if err := ValidateIntegrity(ctx, db); err != nil {
		t.Errorf("ValidateIntegrity() error = %v", err)
	}
}

func TestInitSchema_RejectsNewerVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion+1); err != nil {
		t.Fatalf("insert version: %v", err)
	}

	if err := InitSchema(ctx, db); err == nil {
		t.Error("expected error for newer schema version")
	}
}

func TestPaths(t *testing.T) {
	if got := DataDir("/proj"); got != filepath.Join("/proj", ".wgcnasim") {
		t.Errorf("DataDir() = %q", got)
	}
	if got := RunsDBPath("/proj"); got != filepath.Join("/proj", ".wgcnasim", "runs.db") {
		t.Errorf("RunsDBPath() = %q", got)
	}
}
