package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/lookup"
)

type lookupRepository struct {
	exec core.DBExecutor
}

var _ lookup.Repository = (*lookupRepository)(nil) // interface compliance check

func NewLookupRepository(exec core.DBExecutor) *lookupRepository {
	return &lookupRepository{exec: exec}
}

func (repo lookupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo lookupRepository) all(ctx context.Context, table string, exec []core.DBExecutor) ([]lookup.Entry, error) {
	var entries []lookup.Entry
	q := `SELECT id, label FROM ` + table + ` ORDER BY id`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &entries, q); err != nil {
		return nil, errors.Wrap(err, "querying "+table)
	}
	return entries, nil
}

func (repo lookupRepository) Genders(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	return repo.all(ctx, "gender", exec)
}

func (repo lookupRepository) Races(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	return repo.all(ctx, "race", exec)
}

func (repo lookupRepository) Disabilities(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	return repo.all(ctx, "disability", exec)
}
