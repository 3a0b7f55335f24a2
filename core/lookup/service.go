package lookup

import (
	"context"

	"github.com/dmorais/escolar/core"
)

type (
	Repository interface {
		Genders(ctx context.Context, exec ...core.DBExecutor) ([]Entry, error)
		Races(ctx context.Context, exec ...core.DBExecutor) ([]Entry, error)
		Disabilities(ctx context.Context, exec ...core.DBExecutor) ([]Entry, error)
	}

	Service interface {
		All(ctx context.Context) (Tables, error)
	}

	// Tables bundles every reference table for a single form-data fetch.
	Tables struct {
		Genders      []Entry `json:"genders"`
		Races        []Entry `json:"races"`
		Disabilities []Entry `json:"disabilities"`
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) All(ctx context.Context) (Tables, error) {
	genders, err := svc.repo.Genders(ctx)
	if err != nil {
		return Tables{}, err
	}
	races, err := svc.repo.Races(ctx)
	if err != nil {
		return Tables{}, err
	}
	disabilities, err := svc.repo.Disabilities(ctx)
	if err != nil {
		return Tables{}, err
	}
	return Tables{Genders: genders, Races: races, Disabilities: disabilities}, nil
}
