package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx. Repositories
	// run against their default executor unless a service hands them an
	// explicit transactional one.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AtomicFn runs fn inside a transaction on db and commits it if fn returns
// nil; any error rolls the transaction back. A nil db (in-memory test
// repositories) runs fn without a transactional handle.
func AtomicFn(ctx context.Context, db DB, fn func(exec ...DBExecutor) error) error {
	if db == nil {
		return fn()
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
