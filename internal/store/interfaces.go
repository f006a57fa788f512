// Package store persists and loads run artifacts: game records from
// ClickHouse or CSV, tuning tables and final reports in Postgres, and
// resumable search checkpoints in Redis.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgPool is the subset of the pgx pool the result store needs, so tests
// can substitute a mock.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
