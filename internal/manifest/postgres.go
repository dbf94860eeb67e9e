package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS fetch_manifest (
		metric_id  TEXT        NOT NULL,
		asset_key  TEXT        NOT NULL,
		run_id     UUID        NOT NULL,
		status     TEXT        NOT NULL,
		row_count  INTEGER     NOT NULL DEFAULT 0,
		path       TEXT        NOT NULL DEFAULT '',
		error      TEXT        NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (metric_id, asset_key)
	)
`

// PostgresStore keeps the manifest in the fetch_manifest table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres creates the table if needed and returns a store backed by db.
// The store owns db and closes it on Close.
func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create fetch_manifest: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Lookup returns the entry for (metricID, assetKey).
func (s *PostgresStore) Lookup(ctx context.Context, metricID, assetKey string) (Entry, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT run_id, metric_id, asset_key, status, row_count, path, error, updated_at
		FROM fetch_manifest
		WHERE metric_id = $1 AND asset_key = $2
	`, metricID, assetKey)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("lookup %s/%s: %w", metricID, assetKey, err)
	}
	return e, true, nil
}

// Record upserts e.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO fetch_manifest (metric_id, asset_key, run_id, status, row_count, path, error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (metric_id, asset_key) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			status = EXCLUDED.status,
			row_count = EXCLUDED.row_count,
			path = EXCLUDED.path,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, e.MetricID, e.AssetKey, e.RunID, string(e.Status), e.Rows, e.Path, e.Error, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("record %s/%s: %w", e.MetricID, e.AssetKey, err)
	}
	return nil
}

// Entries returns every entry ordered by metric then asset.
func (s *PostgresStore) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT run_id, metric_id, asset_key, status, row_count, path, error, updated_at
		FROM fetch_manifest
		ORDER BY metric_id, asset_key
	`)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manifest row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var status string
	err := row.Scan(&e.RunID, &e.MetricID, &e.AssetKey, &status, &e.Rows, &e.Path, &e.Error, &e.UpdatedAt)
	e.Status = Status(status)
	return e, err
}
