package teacher

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
)

var (
	// ErrNotFound is used when a specific Teacher is requested but does not exist.
	ErrNotFound = errors.New("teacher not found")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tchr *Teacher, exec ...core.DBExecutor) error
		QueryTeachers(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, tchr *Teacher, exec ...core.DBExecutor) error
		DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountCoursesByTeacher(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]Teacher, error)
		GetByID(ctx context.Context, id int) (Teacher, error)
		Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}
	tchr := Teacher{
		Name:         nt.Name,
		NationalID:   nt.NationalID,
		Email:        nt.Email,
		Phone:        nt.Phone,
		Address:      nt.Address,
		GenderID:     nt.GenderID,
		RaceID:       nt.RaceID,
		DisabilityID: nt.DisabilityID,
	}
	if err := svc.repo.CreateTeacher(ctx, &tchr); err != nil {
		return Teacher{}, err
	}
	return tchr, nil
}

func (svc *service) Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, core.CleanString(search, true /* lower */), ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	tchr, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if err = ut.Validate(tchr); err != nil {
		return Teacher{}, err
	}
	tchr.Name = ut.Name
	tchr.NationalID = ut.NationalID
	tchr.Email = ut.Email
	tchr.Phone = ut.Phone
	tchr.Address = ut.Address
	tchr.GenderID = ut.GenderID
	tchr.RaceID = ut.RaceID
	tchr.DisabilityID = ut.DisabilityID
	if err = svc.repo.UpdateTeacher(ctx, &tchr); err != nil {
		return Teacher{}, err
	}
	return tchr, nil
}

// Delete refuses to remove a Teacher that still owns courses; reassign or
// delete the courses first.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetTeacherByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountCoursesByTeacher(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("teacher", "courses")
	}
	return svc.repo.DeleteTeacher(ctx, id)
}
