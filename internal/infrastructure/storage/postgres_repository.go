package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"TrendDigest/internal/ports"
)

// PostgresArchive persists published daily digests into Postgres, one row per
// run date. It gives the weekly path a structured source of rendered bodies
// instead of round-tripping through the issue tracker.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DigestArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres with the given DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresArchive(db), nil
}

// SaveDigest upserts the rendered digest for a run date.
func (r *PostgresArchive) SaveDigest(ctx context.Context, runDate time.Time, title, body string, itemCount int) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("daily_digests").
		Columns("run_date", "title", "body", "item_count").
		Values(runDate.UTC().Format("2006-01-02"), title, body, itemCount).
		Suffix(`ON CONFLICT (run_date) DO UPDATE
                SET title = EXCLUDED.title,
                    body = EXCLUDED.body,
                    item_count = EXCLUDED.item_count,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}

	return nil
}

// DigestBodiesSince returns rendered digest bodies for run dates within the
// last sinceDays, newest first.
func (r *PostgresArchive) DigestBodiesSince(ctx context.Context, sinceDays int) ([]string, error) {
	if r.db == nil {
		return nil, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -sinceDays).Format("2006-01-02")

	query, args, err := r.builder.
		Select("body").
		From("daily_digests").
		Where(sq.GtOrEq{"run_date": cutoff}).
		OrderBy("run_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query digests: %w", err)
	}

	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan body: %w", err)
		}
		bodies = append(bodies, body)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return bodies, nil
}

// Close releases the underlying connection pool.
func (r *PostgresArchive) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
