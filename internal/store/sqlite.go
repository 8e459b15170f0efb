package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// ErrNotFound is the engine's sentinel so errors.Is works across layers.
var ErrNotFound = experiment.ErrNotFound

type SQLiteStore struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    status TEXT NOT NULL,
    payload TEXT NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_experiments_position ON experiments(position);
CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments(status);

CREATE TABLE IF NOT EXISTS contents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    hashtags TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every stored experiment in collection order.
func (s *SQLiteStore) Load(ctx context.Context) ([]*experiment.Experiment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM experiments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*experiment.Experiment
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}

		var exp experiment.Experiment
		if err := json.Unmarshal([]byte(payload), &exp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experiment %s: %w", id, err)
		}
		experiments = append(experiments, &exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiments: %w", err)
	}

	return experiments, nil
}

// Save replaces the stored collection with experiments in one transaction,
// so a failed write leaves the previous collection intact.
func (s *SQLiteStore) Save(ctx context.Context, experiments []*experiment.Experiment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM experiments`); err != nil {
		return fmt.Errorf("failed to clear experiments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO experiments (id, position, name, status, payload, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, exp := range experiments {
		payload, err := json.Marshal(exp)
		if err != nil {
			return fmt.Errorf("failed to marshal experiment %s: %w", exp.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, exp.ID, i, exp.Name, string(exp.Status), string(payload), now); err != nil {
			return fmt.Errorf("failed to insert experiment %s: %w", exp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit experiments: %w", err)
	}
	return nil
}

// CountExperiments is used by the health check.
func (s *SQLiteStore) CountExperiments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count experiments: %w", err)
	}
	return n, nil
}

// CreateContent stores a content item. An empty ID is filled in.
func (s *SQLiteStore) CreateContent(ctx context.Context, c experiment.Content) (*experiment.Content, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contents (id, title, thumbnail_url, hashtags, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.ThumbnailURL, c.Hashtags, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}

	c.CreatedAt = time.Unix(now, 0)
	return &c, nil
}

func (s *SQLiteStore) GetContent(ctx context.Context, id string) (*experiment.Content, error) {
	var c experiment.Content
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, thumbnail_url, hashtags, created_at FROM contents WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.ThumbnailURL, &c.Hashtags, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}

func (s *SQLiteStore) ListContent(ctx context.Context) ([]*experiment.Content, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, thumbnail_url, hashtags, created_at FROM contents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	var items []*experiment.Content
	for rows.Next() {
		var c experiment.Content
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Title, &c.ThumbnailURL, &c.Hashtags, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		items = append(items, &c)
	}

	return items, rows.Err()
}

// SizeBytes reports the database size from SQLite's page accounting.
func (s *SQLiteStore) SizeBytes(ctx context.Context) (int64, error) {
	var size int64
	row := s.db.QueryRowContext(ctx, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to read database size: %w", err)
	}
	return size, nil
}

// Path is the database file the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}
