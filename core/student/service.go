package student

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core"
)

var (
	// ErrNotFound is used when a specific Student is requested but does not exist.
	ErrNotFound = errors.New("student not found")
)

type (
	// QueryFilter narrows down a student listing.
	QueryFilter struct {
		Search       string   // matches name, email or national id
		ClassGroupID null.Int // only students of this class group
		Active       *bool    // nil: all; true: not completed; false: completed
	}

	Repository interface {
		CreateStudent(ctx context.Context, std *Student, exec ...core.DBExecutor) error
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std *Student, exec ...core.DBExecutor) error
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountAttendanceRecords(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
		CountEnrollments(ctx context.Context, id int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		Update(ctx context.Context, id int, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

func (f *QueryFilter) Clean() {
	if f != nil {
		f.Search = core.CleanString(f.Search, true /* lower */)
	}
}

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	std := Student{
		Name:         ns.Name,
		BirthDate:    ns.BirthDate,
		NationalID:   ns.NationalID,
		Email:        ns.Email,
		Phone:        ns.Phone,
		Address:      ns.Address,
		EnrolledOn:   ns.EnrolledOn,
		Notes:        ns.Notes,
		ClassGroupID: ns.ClassGroupID,
		GenderID:     ns.GenderID,
		RaceID:       ns.RaceID,
		DisabilityID: ns.DisabilityID,
	}
	if err := svc.repo.CreateStudent(ctx, &std); err != nil {
		return Student{}, err
	}
	return std, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(std); err != nil {
		return Student{}, err
	}
	std.Name = us.Name
	std.BirthDate = us.BirthDate
	std.NationalID = us.NationalID
	std.Email = us.Email
	std.Phone = us.Phone
	std.Address = us.Address
	std.EnrolledOn = us.EnrolledOn
	std.CompletedOn = us.CompletedOn
	std.Notes = us.Notes
	std.ClassGroupID = us.ClassGroupID
	std.GenderID = us.GenderID
	std.RaceID = us.RaceID
	std.DisabilityID = us.DisabilityID
	if err = svc.repo.UpdateStudent(ctx, &std); err != nil {
		return Student{}, err
	}
	return std, nil
}

// Delete refuses to remove a Student that still has attendance records or
// course enrollments attached; those carry history that must be detached first.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountAttendanceRecords(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("student", "attendance records")
	}
	if count, err = svc.repo.CountEnrollments(ctx, id); err != nil {
		return err
	}
	if count > 0 {
		return core.NewHasDependentsError("student", "course enrollments")
	}
	return svc.repo.DeleteStudent(ctx, id)
}
