package classgroup

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
)

var (
	// ErrNotFound is used when a specific ClassGroup is requested but does not exist.
	ErrNotFound = errors.New("class group not found")
)

type (
	Repository interface {
		CreateClassGroup(ctx context.Context, cg *ClassGroup, exec ...core.DBExecutor) error
		QueryClassGroups(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ClassGroup, error)
		GetClassGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (ClassGroup, error)
		UpdateClassGroup(ctx context.Context, cg *ClassGroup, exec ...core.DBExecutor) error
		DeleteClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountStudentsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
		CountSessionsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
		CountCoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
		CoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) ([]course.Course, error)
	}

	Service interface {
		Create(ctx context.Context, ncg NewClassGroup) (ClassGroup, error)
		Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]ClassGroup, error)
		GetByID(ctx context.Context, id int) (ClassGroup, error)
		Update(ctx context.Context, id int, ucg UpdateClassGroup) (ClassGroup, error)
		Delete(ctx context.Context, id int) error
		Courses(ctx context.Context, id int) ([]course.Course, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ncg NewClassGroup) (ClassGroup, error) {
	shift, err := ncg.Validate()
	if err != nil {
		return ClassGroup{}, err
	}
	cg := ClassGroup{
		Name:        ncg.Name,
		Description: ncg.Description,
		Shift:       shift,
	}
	if err = svc.repo.CreateClassGroup(ctx, &cg); err != nil {
		return ClassGroup{}, err
	}
	return cg, nil
}

func (svc *service) Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]ClassGroup, error) {
	return svc.repo.QueryClassGroups(ctx, core.CleanString(search, true /* lower */), ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (ClassGroup, error) {
	return svc.repo.GetClassGroupByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ucg UpdateClassGroup) (ClassGroup, error) {
	cg, err := svc.repo.GetClassGroupByID(ctx, id)
	if err != nil {
		return ClassGroup{}, err
	}
	shift, err := ucg.Validate(cg)
	if err != nil {
		return ClassGroup{}, err
	}
	cg.Name = ucg.Name
	cg.Description = ucg.Description
	cg.Shift = shift
	if err = svc.repo.UpdateClassGroup(ctx, &cg); err != nil {
		return ClassGroup{}, err
	}
	return cg, nil
}

// Delete refuses to remove a ClassGroup that still has students, sessions or
// linked courses. The checks run before any delete statement so a refusal
// leaves every row intact.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetClassGroupByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountStudentsByClassGroup(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("class group", "students")
	}
	if count, err = svc.repo.CountSessionsByClassGroup(ctx, id); err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("class group", "sessions")
	}
	if count, err = svc.repo.CountCoursesByClassGroup(ctx, id); err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("class group", "courses")
	}
	return svc.repo.DeleteClassGroup(ctx, id)
}

// Courses lists the courses linked to the ClassGroup.
func (svc *service) Courses(ctx context.Context, id int) ([]course.Course, error) {
	if _, err := svc.repo.GetClassGroupByID(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.CoursesByClassGroup(ctx, id)
}
