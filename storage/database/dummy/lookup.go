package dummydb

import (
	"context"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/lookup"
)

type lookupRepository struct {
	db *lookupTable
}

var _ lookup.Repository = (*lookupRepository)(nil) // interface compliance check

func NewLookupRepository(db *DB) *lookupRepository {
	return &lookupRepository{db: db.lookup}
}

func (repo *lookupRepository) Genders(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]lookup.Entry(nil), repo.db.genders...), nil
}

func (repo *lookupRepository) Races(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]lookup.Entry(nil), repo.db.races...), nil
}

func (repo *lookupRepository) Disabilities(ctx context.Context, exec ...core.DBExecutor) ([]lookup.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]lookup.Entry(nil), repo.db.disabilities...), nil
}
