package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/dbx"
	"github.com/burnnote/burner/internal/store/migrations"
)

// PostgresStore keeps records in a notes table. Consume is a single
// DELETE ... RETURNING statement, so concurrent consumers race inside the
// database and exactly one of them sees the row.
type PostgresStore struct {
	db     dbx.Querier
	closer func() error
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects via the pgx stdlib driver, runs the embedded
// goose migrations and returns a ready store.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db, closer: db.Close}, nil
}

// NewPostgresStore wraps an existing connection without running
// migrations. Used by tests.
func NewPostgresStore(db dbx.Querier) *PostgresStore {
	return &PostgresStore{db: db, closer: func() error { return nil }}
}

func (s *PostgresStore) Put(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO notes (id, payload, created, ttl_ms)
		VALUES ($1, $2, $3, $4);
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Payload, rec.Created.UTC(), rec.TTL.Milliseconds())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT payload, created, ttl_ms FROM notes WHERE id = $1;`
	rec, err := s.scanRecord(s.db.QueryRowContext(ctx, query, id), id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) Consume(ctx context.Context, id string, now time.Time) (*Record, error) {
	query := `DELETE FROM notes WHERE id = $1 RETURNING payload, created, ttl_ms;`
	rec, err := s.scanRecord(s.db.QueryRowContext(ctx, query, id), id)
	if err != nil {
		return nil, err
	}
	if rec.Expired(now) {
		return nil, common.ErrExpired
	}
	return rec, nil
}

func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM notes WHERE created + ttl_ms * interval '1 millisecond' <= $1;`
	res, err := s.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) Close() error {
	return s.closer()
}

func (s *PostgresStore) scanRecord(row *sql.Row, id string) (*Record, error) {
	rec := &Record{ID: id}
	var ttlMs int64
	if err := row.Scan(&rec.Payload, &rec.Created, &ttlMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.TTL = time.Duration(ttlMs) * time.Millisecond
	return rec, nil
}
