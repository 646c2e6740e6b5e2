package buildlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the build log in a local SQLite file.
type SQLiteStore struct {
	DB *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite database: %w", err)
	}

	s := &SQLiteStore{DB: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS build_log (
		id TEXT PRIMARY KEY,
		service TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		triggered_by TEXT NOT NULL DEFAULT '',
		posts INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO build_log (id, service, timestamp, triggered_by, posts, pages, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Service, e.Timestamp.UTC(), e.TriggeredBy, e.Posts, e.Pages, e.Status, e.Error)
	return err
}

func (s *SQLiteStore) Recent(ctx context.Context, service string, limit int) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, service, timestamp, triggered_by, posts, pages, status, error
		 FROM build_log WHERE service = ? ORDER BY timestamp DESC LIMIT ?`,
		service, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Service, &e.Timestamp, &e.TriggeredBy, &e.Posts, &e.Pages, &e.Status, &e.Error); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Prune(ctx context.Context, service string, keep int) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM build_log WHERE service = ? AND id NOT IN (
			SELECT id FROM build_log WHERE service = ? ORDER BY timestamp DESC LIMIT ?
		)`,
		service, service, keep)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
