// Package enrollment links students to the courses they take. The link table
// carries the enrollment date so reports can tell when a student joined.
package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/student"
)

var (
	// ErrAlreadyEnrolled is used when a student is enrolled into a course twice.
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
)

type (
	Repository interface {
		IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error)
		Enroll(ctx context.Context, studentID, courseID int, on time.Time, exec ...core.DBExecutor) error
		// Unenroll reports whether a membership row was actually removed.
		Unenroll(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error)
		CoursesOf(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error)
	}

	Service interface {
		Enroll(ctx context.Context, studentID, courseID int) error
		Unenroll(ctx context.Context, studentID, courseID int) (bool, error)
		Courses(ctx context.Context, studentID int) ([]course.Course, error)
	}

	service struct {
		repo        Repository
		studentRepo student.Repository
		courseRepo  course.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, studentRepo student.Repository, courseRepo course.Repository) Service {
	return &service{repo: repo, studentRepo: studentRepo, courseRepo: courseRepo}
}

// Enroll adds studentID to courseID dated today. Both sides must exist and
// the membership is checked first so a duplicate enrolls fails cleanly
// instead of surfacing a constraint violation.
func (svc *service) Enroll(ctx context.Context, studentID, courseID int) error {
	if _, err := svc.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		return err
	}
	if _, err := svc.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return err
	}
	enrolled, err := svc.repo.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}
	return svc.repo.Enroll(ctx, studentID, courseID, core.Today())
}

// Unenroll removes the membership if present; it reports false when the
// student was not enrolled, which is not an error.
func (svc *service) Unenroll(ctx context.Context, studentID, courseID int) (bool, error) {
	if _, err := svc.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		return false, err
	}
	if _, err := svc.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return false, err
	}
	return svc.repo.Unenroll(ctx, studentID, courseID)
}

func (svc *service) Courses(ctx context.Context, studentID int) ([]course.Course, error) {
	if _, err := svc.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.CoursesOf(ctx, studentID)
}
