package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"turnstile/internal/config"
	"turnstile/internal/queue"
)

// Store persists the engine snapshot in a SQLite database. The snapshot is a
// single JSON record; every save overwrites the previous one.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the snapshot database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "turnstile.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the snapshot database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save overwrites the stored snapshot with the provided state.
func (s *Store) Save(ctx context.Context, snap queue.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO engine_snapshot (id, payload, saved_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. A missing record is not an error: the
// engine starts fresh. Fields absent from an older payload decode to zero
// values, which the engine treats as fresh-state defaults.
func (s *Store) Load(ctx context.Context) (*queue.Snapshot, error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM engine_snapshot WHERE id = 1`)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap queue.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the stored snapshot, returning the store to its fresh
// state. Deleting an absent snapshot is not an error.
func (s *Store) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM engine_snapshot WHERE id = 1`); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// SavedAt reports when the stored snapshot was written. The zero time means
// no snapshot exists.
func (s *Store) SavedAt(ctx context.Context) (time.Time, error) {
	var raw string
	row := s.db.QueryRowContext(ctx, `SELECT saved_at FROM engine_snapshot WHERE id = 1`)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read snapshot time: %w", err)
	}
	saved, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot time: %w", err)
	}
	return saved, nil
}
