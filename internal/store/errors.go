package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports an empty read-side lookup.
var ErrNotFound = errors.New("not found")

// Error is a storage failure annotated with the operation and, when the
// failure came from Postgres, the server error code.
type Error struct {
	Op   string
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap annotates err with the operation name, extracting the Postgres error
// code when present. nil passes through.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Op: op, Code: pgErr.Code, Err: err}
	}
	return &Error{Op: op, Err: err}
}

// IsSchemaMismatch reports whether err is a column-level disagreement
// between the rows being written and the live table.
func IsSchemaMismatch(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == pgerrcode.UndefinedColumn || e.Code == pgerrcode.UndefinedTable
}
