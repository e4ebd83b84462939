// Package dbx holds a tiny database/sql abstraction shared by SQL-backed
// stores.
package dbx

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the stores use. Both *sql.DB and
// *sql.Tx satisfy it, so store code runs unchanged inside a transaction
// and tests can substitute a mock connection.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
