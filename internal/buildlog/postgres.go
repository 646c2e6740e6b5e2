package buildlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	Pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	s := &PostgresStore{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS build_log (
			id TEXT PRIMARY KEY,
			service TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			triggered_by TEXT NOT NULL DEFAULT '',
			posts INT NOT NULL DEFAULT 0,
			pages INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS build_log_service_ts ON build_log (service, timestamp DESC)`,
	}

	for _, q := range queries {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO build_log (id, service, timestamp, triggered_by, posts, pages, status, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Service, e.Timestamp, e.TriggeredBy, e.Posts, e.Pages, e.Status, e.Error)
	return err
}

func (s *PostgresStore) Recent(ctx context.Context, service string, limit int) ([]Entry, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, service, timestamp, triggered_by, posts, pages, status, error
		 FROM build_log WHERE service = $1 ORDER BY timestamp DESC LIMIT $2`,
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

func (s *PostgresStore) Prune(ctx context.Context, service string, keep int) error {
	_, err := s.Pool.Exec(ctx,
		`DELETE FROM build_log WHERE service = $1 AND id NOT IN (
			SELECT id FROM build_log WHERE service = $1 ORDER BY timestamp DESC LIMIT $2
		)`,
		service, keep)
	return err
}

func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}
