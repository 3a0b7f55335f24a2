package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/teacher"
)

var (
	// ErrNotFound is used when a specific Course is requested but does not exist.
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs *Course, exec ...core.DBExecutor) error
		QueryCourses(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Course, error)
		GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		UpdateCourse(ctx context.Context, crs *Course, exec ...core.DBExecutor) error
		DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountEnrollmentsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
		CountClassGroupsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		Update(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo        Repository
		teacherRepo teacher.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, teacherRepo teacher.Repository) Service {
	return &service{repo: repo, teacherRepo: teacherRepo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	area, shift, err := nc.Validate()
	if err != nil {
		return Course{}, err
	}
	if _, err = svc.teacherRepo.GetTeacherByID(ctx, nc.TeacherID); err != nil {
		return Course{}, err
	}
	crs := Course{
		Name:        nc.Name,
		Description: nc.Description,
		Area:        area,
		Shift:       shift,
		TeacherID:   nc.TeacherID,
	}
	if err = svc.repo.CreateCourse(ctx, &crs); err != nil {
		return Course{}, err
	}
	return crs, nil
}

func (svc *service) Query(ctx context.Context, search string, ordering ...core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, core.CleanString(search, true /* lower */), ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	area, shift, err := uc.Validate(crs)
	if err != nil {
		return Course{}, err
	}
	if uc.TeacherID != crs.TeacherID {
		if _, err = svc.teacherRepo.GetTeacherByID(ctx, uc.TeacherID); err != nil {
			return Course{}, err
		}
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.Area = area
	crs.Shift = shift
	crs.TeacherID = uc.TeacherID
	if err = svc.repo.UpdateCourse(ctx, &crs); err != nil {
		return Course{}, err
	}
	return crs, nil
}

// Delete refuses to remove a Course that still has enrolled students or is
// linked to class groups.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourseByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountEnrollmentsByCourse(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("course", "enrolled students")
	}
	if count, err = svc.repo.CountClassGroupsByCourse(ctx, id); err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("course", "class group links")
	}
	return svc.repo.DeleteCourse(ctx, id)
}
