package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/milescsmith/WGCNA/internal/simulate"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (or creates) the run registry at
// <projectRoot>/.wgcnasim/runs.db.
func NewSQLiteRunStore(projectRoot string) (*SQLiteRunStore, error) {
	dataDir := DataDir(projectRoot)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dataDir, err)
	}
	return OpenSQLiteRunStore(RunsDBPath(projectRoot))
}

// OpenSQLiteRunStore opens the run registry at an explicit database path.
func OpenSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// RecordRun inserts run and its module counts in one transaction.
func (s *SQLiteRunStore) RecordRun(ctx context.Context, run Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := encodeConfig(run.Config)
	if err != nil {
		return 0, err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, seed, samples, genes, background, high_traits, matrix_checksum, export_dir, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		strconv.FormatUint(run.Seed, 10),
		run.Samples, run.Genes, run.Background, run.HighTraits,
		run.MatrixChecksum, nullString(run.ExportDir), cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, mc := range run.Modules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO module_counts (run_id, position, module, genes) VALUES (?, ?, ?, ?)`,
			id, i, mc.Module, mc.Genes); err != nil {
			return 0, fmt.Errorf("failed to insert module count for %s: %w", mc.Module, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun returns a run by ID.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, seed, samples, genes, background, high_traits, matrix_checksum, export_dir, config
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadModuleCounts(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, created_at, seed, samples, genes, background, high_traits, matrix_checksum, export_dir, config
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	rows.Close()

	// Module counts are loaded after the cursor is closed: the pool has a single connection.
	for i := range runs {
		if err := s.loadModuleCounts(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteRunStore) loadModuleCounts(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module, genes FROM module_counts WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query module counts: %w", err)
	}
	defer rows.Close()

	run.Modules = nil
	for rows.Next() {
		var mc simulate.ModuleCount
		if err := rows.Scan(&mc.Module, &mc.Genes); err != nil {
			return fmt.Errorf("failed to scan module count: %w", err)
		}
		run.Modules = append(run.Modules, mc)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
		seed      string
		exportDir sql.NullString
		cfg       string
	)
	if err := row.Scan(&run.ID, &createdAt, &seed, &run.Samples, &run.Genes,
		&run.Background, &run.HighTraits, &run.MatrixChecksum, &exportDir, &cfg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var err error
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("run %d: invalid created_at: %w", run.ID, err)
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("run %d: invalid seed: %w", run.ID, err)
	}
	if run.Config, err = decodeConfig(cfg); err != nil {
		return nil, fmt.Errorf("run %d: %w", run.ID, err)
	}
	run.ExportDir = exportDir.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
