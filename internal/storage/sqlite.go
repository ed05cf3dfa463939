package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kagi/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SQLiteStorage implements Storage using SQLite. Store order is rowid order,
// which an upsert of an existing ID preserves.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS shortcuts (
		id TEXT PRIMARY KEY,
		app TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		keys_mac TEXT NOT NULL DEFAULT '',
		keys_windows TEXT NOT NULL DEFAULT '',
		keys_linux TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT,
		source TEXT,
		source_url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_shortcuts_app ON shortcuts(app COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_shortcuts_source_url ON shortcuts(source_url);
	`
	_, err := db.Exec(schema)
	return err
}

const selectColumns = `SELECT id, app, action, keys_mac, keys_windows, keys_linux,
	context, category, tags, source FROM shortcuts`

// Search returns records matching q in store order.
func (s *SQLiteStorage) Search(ctx context.Context, q StoreQuery) ([]*models.Shortcut, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+`
		 WHERE (? = '' OR app = ? COLLATE NOCASE)
		   AND (? = '' OR category = ? COLLATE NOCASE)
		 ORDER BY rowid LIMIT ?`,
		q.App, q.App, q.Category, q.Category, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortcuts: %w", err)
	}
	return scanShortcuts(rows)
}

// ByApp returns every record owned by app.
func (s *SQLiteStorage) ByApp(ctx context.Context, app string) ([]*models.Shortcut, error) {
	if app == "" {
		return []*models.Shortcut{}, nil
	}
	return s.Search(ctx, StoreQuery{App: app})
}

// ByID returns a record by ID or ErrNotFound.
func (s *SQLiteStorage) ByID(ctx context.Context, id string) (*models.Shortcut, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	recs, err := scanShortcuts(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// Upsert inserts or replaces records in a single transaction.
func (s *SQLiteStorage) Upsert(ctx context.Context, recs ...*models.Shortcut) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shortcuts (id, app, action, keys_mac, keys_windows, keys_linux,
			context, category, tags, source, source_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			app = excluded.app, action = excluded.action,
			keys_mac = excluded.keys_mac, keys_windows = excluded.keys_windows,
			keys_linux = excluded.keys_linux, context = excluded.context,
			category = excluded.category, tags = excluded.tags,
			source = excluded.source, source_url = excluded.source_url,
			updated_at = excluded.updated_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			continue
		}
		tagsJSON, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		var sourceJSON []byte
		var sourceURL string
		if rec.Source != nil {
			if sourceJSON, err = json.Marshal(rec.Source); err != nil {
				return fmt.Errorf("failed to marshal source: %w", err)
			}
			sourceURL = rec.Source.URL
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.App, rec.Action, rec.Keys.Mac, rec.Keys.Windows, rec.Keys.Linux,
			rec.Context, rec.Category, string(tagsJSON), nullString(sourceJSON), sourceURL, now,
		); err != nil {
			return fmt.Errorf("failed to upsert shortcut %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes a record by ID.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE id = ?`, id)
	return err
}

// DeleteBySource removes every record imported from url.
func (s *SQLiteStorage) DeleteBySource(ctx context.Context, url string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE source_url = ?`, url)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the total number of records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shortcuts`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func scanShortcuts(rows *sql.Rows) ([]*models.Shortcut, error) {
	defer rows.Close()

	out := make([]*models.Shortcut, 0)
	for rows.Next() {
		var rec models.Shortcut
		var tagsJSON, sourceJSON sql.NullString
		if err := rows.Scan(&rec.ID, &rec.App, &rec.Action,
			&rec.Keys.Mac, &rec.Keys.Windows, &rec.Keys.Linux,
			&rec.Context, &rec.Category, &tagsJSON, &sourceJSON); err != nil {
			return nil, err
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", rec.ID, err)
			}
		}
		if sourceJSON.Valid && sourceJSON.String != "" {
			var src models.Source
			if err := json.Unmarshal([]byte(sourceJSON.String), &src); err != nil {
				return nil, fmt.Errorf("failed to unmarshal source of %s: %w", rec.ID, err)
			}
			rec.Source = &src
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

