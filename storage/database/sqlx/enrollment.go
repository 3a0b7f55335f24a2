package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/enrollment"
)

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo enrollmentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo enrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM course_student WHERE student_id = $1 AND course_id = $2)`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &exists, q, studentID, courseID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}

func (repo enrollmentRepository) Enroll(ctx context.Context, studentID, courseID int, on time.Time, exec ...core.DBExecutor) error {
	q := `INSERT INTO course_student (student_id, course_id, enrolled_on) VALUES ($1, $2, $3)`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, studentID, courseID, on); err != nil {
		return trapConflictErr(err, "inserting enrollment")
	}
	return nil
}

func (repo enrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	q := `DELETE FROM course_student WHERE student_id = $1 AND course_id = $2`
	res, err := repo.getExec(exec).ExecContext(ctx, q, studentID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "deleting enrollment")
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting enrollment")
	}
	return count > 0, nil
}

func (repo enrollmentRepository) CoursesOf(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error) {
	q := `
	SELECT c.id, c.name, c.description, c.area, c.shift, c.teacher_id, c.created_at, c.updated_at
	FROM course c
	         JOIN course_student cs ON cs.course_id = c.id
	WHERE cs.student_id = $1
	ORDER BY c.name`
	courses := make([]course.Course, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &courses, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	return courses, nil
}
