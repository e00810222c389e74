package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
)

// SQLiteBackend persists quota snapshots to a single SQLite file.
//
// The database runs in WAL mode with a busy timeout; SQLite supports a
// single writer, so the connection pool is capped at one connection.
type SQLiteBackend struct {
	db *sql.DB
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteBackend opens (or creates) the database at dbPath with
// default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteConfig{DBPath: dbPath})
}

// NewSQLiteBackendWithConfig opens the database with custom settings.
func NewSQLiteBackendWithConfig(cfg SQLiteConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("storage: db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{db: db}
	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: initialize schema: %w", err)
	}
	return backend, nil
}

// initSchema creates the table if it does not exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quota_windows (
		dimension TEXT PRIMARY KEY,
		limit_value INTEGER NOT NULL,
		used INTEGER NOT NULL,
		window_start INTEGER NOT NULL,
		window_length INTEGER NOT NULL,
		taken_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot replaces the persisted snapshot with snap.
func (s *SQLiteBackend) SaveSnapshot(ctx context.Context, snap quota.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quota_windows`); err != nil {
		return fmt.Errorf("storage: clear previous snapshot: %w", err)
	}

	stmt := `
		INSERT INTO quota_windows (dimension, limit_value, used, window_start, window_length, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, w := range snap.Windows {
		_, err := tx.ExecContext(ctx, stmt,
			string(w.Dimension),
			w.Limit,
			w.Used,
			w.WindowStart.UnixNano(),
			int64(w.WindowLength),
			snap.TakenAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("storage: save window %s: %w", w.Dimension, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit save: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted snapshot, or nil when the table is
// empty (a fresh database).
func (s *SQLiteBackend) LoadSnapshot(ctx context.Context) (*quota.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dimension, limit_value, used, window_start, window_length, taken_at
		FROM quota_windows
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: load snapshot: %w", err)
	}
	defer rows.Close()

	var snap quota.Snapshot
	for rows.Next() {
		var (
			dimension            string
			limit, used          int64
			windowStart, takenAt int64
			windowLength         int64
		)
		if err := rows.Scan(&dimension, &limit, &used, &windowStart, &windowLength, &takenAt); err != nil {
			return nil, fmt.Errorf("storage: scan window row: %w", err)
		}
		snap.Windows = append(snap.Windows, quota.WindowUsage{
			Dimension:    quota.Dimension(dimension),
			Limit:        limit,
			Used:         used,
			WindowStart:  time.Unix(0, windowStart),
			WindowLength: time.Duration(windowLength),
		})
		snap.TakenAt = time.Unix(0, takenAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate windows: %w", err)
	}

	if len(snap.Windows) == 0 {
		return nil, nil
	}
	return &snap, nil
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
