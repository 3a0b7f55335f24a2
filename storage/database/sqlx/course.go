package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
)

const courseColumns = `id, name, description, area, shift, teacher_id, created_at, updated_at`

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to course.ErrNotFound
func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO course (name, description, area, shift, teacher_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	RETURNING id, created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), crs, q,
		crs.Name, crs.Description, crs.Area, crs.Shift, crs.TeacherID, time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting course")
	}
	return nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]course.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM course`
	var args []interface{}
	if search != "" {
		q += ` WHERE name ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY ` + orderBy(ordering, "name ASC")

	courses := make([]course.Course, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	var crs course.Course
	q := `SELECT ` + courseColumns + ` FROM course WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &crs, q, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course by ID")
	}
	return crs, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	q := `
	UPDATE course
	SET name = $2, description = $3, area = $4, shift = $5, teacher_id = $6, updated_at = $7
	WHERE id = $1
	RETURNING updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), crs, q,
		crs.ID, crs.Name, crs.Description, crs.Area, crs.Shift, crs.TeacherID, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.ErrNotFound
		}
		return trapConflictErr(err, "updating course")
	}
	return nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return trapConflictErr(err, "deleting course")
	}
	return nil
}

func (repo courseRepository) CountEnrollmentsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM course_student WHERE course_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting course enrollments")
	}
	return count, nil
}

func (repo courseRepository) CountClassGroupsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM class_group_course WHERE course_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting course class groups")
	}
	return count, nil
}
