// Package postgres is the PostgreSQL backend. Like the memory backend, one
// Store satisfies every service's store interface.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	candidacyModels "nhc/internal/candidacy/models"
	pg "nhc/internal/platform/postgres"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/platform/tx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the schema, one file per version.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate brings db up to the current schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	return pg.Migrate(ctx, db, Migrations())
}

// Store runs queries against the pool, or against one transaction when it
// was handed out by RunInTx.
type Store struct {
	db      *sql.DB
	q       tx.Querier
	sqlTx   *sql.Tx
	timeout time.Duration
}

type Option func(*Store)

// WithTxTimeout bounds units of work whose context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, q: db, timeout: tx.DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var tracer = otel.Tracer("nhc/storage/postgres")

// RunInTx runs fn against a store bound to a single transaction. Nested calls
// join the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(store *Store) error) error {
	if s.sqlTx != nil {
		return fn(s)
	}
	ctx, span := tracer.Start(ctx, "postgres.tx")
	defer span.End()

	err := tx.Run(ctx, s.db, s.timeout, func(ctx context.Context, sqlTx *sql.Tx) error {
		return fn(&Store{db: s.db, q: sqlTx, sqlTx: sqlTx, timeout: s.timeout})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction rolled back")
	}
	return err
}

// Savepoint isolates fn's statements so their failure does not abort the
// enclosing transaction. Outside a transaction fn simply runs.
func (s *Store) Savepoint(ctx context.Context, name string, fn func() error) error {
	if s.sqlTx == nil {
		return fn()
	}
	return tx.Savepoint(ctx, s.sqlTx, name, fn)
}

// writeErr translates constraint failures into storage sentinels.
func writeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case pg.ConstraintName(err) == "supports_period_category_supporter_key":
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrAlreadyUsed, candidacyModels.ErrCategorySupported)
	case pg.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
	case pg.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func readErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectRow turns an UPDATE or DELETE that matched nothing into ErrNotFound.
func expectRow(op string, res sql.Result, err error) error {
	if err != nil {
		return writeErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// collect scans every row with scan.
func collect[T any](rows *sql.Rows, op string, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
