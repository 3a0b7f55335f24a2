package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
)

const classGroupColumns = `id, name, description, shift, created_at, updated_at`

type classGroupRepository struct {
	exec core.DBExecutor
}

var _ classgroup.Repository = (*classGroupRepository)(nil) // interface compliance check

func NewClassGroupRepository(exec core.DBExecutor) *classGroupRepository {
	return &classGroupRepository{exec: exec}
}

func (repo classGroupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to classgroup.ErrNotFound
func (repo classGroupRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return classgroup.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classGroupRepository) CreateClassGroup(ctx context.Context, cg *classgroup.ClassGroup, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO class_group (name, description, shift, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4)
	RETURNING id, created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), cg, q,
		cg.Name, cg.Description, cg.Shift, time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting class group")
	}
	return nil
}

func (repo classGroupRepository) QueryClassGroups(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]classgroup.ClassGroup, error) {
	q := `SELECT ` + classGroupColumns + ` FROM class_group`
	var args []interface{}
	if search != "" {
		q += ` WHERE name ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY ` + orderBy(ordering, "name ASC")

	groups := make([]classgroup.ClassGroup, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &groups, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying class groups")
	}
	return groups, nil
}

func (repo classGroupRepository) GetClassGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (classgroup.ClassGroup, error) {
	var cg classgroup.ClassGroup
	q := `SELECT ` + classGroupColumns + ` FROM class_group WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &cg, q, id); err != nil {
		return classgroup.ClassGroup{}, repo.trapNoRowsErr(err, "finding class group by ID")
	}
	return cg, nil
}

func (repo classGroupRepository) UpdateClassGroup(ctx context.Context, cg *classgroup.ClassGroup, exec ...core.DBExecutor) error {
	q := `
	UPDATE class_group
	SET name = $2, description = $3, shift = $4, updated_at = $5
	WHERE id = $1
	RETURNING updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), cg, q,
		cg.ID, cg.Name, cg.Description, cg.Shift, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return classgroup.ErrNotFound
		}
		return trapConflictErr(err, "updating class group")
	}
	return nil
}

func (repo classGroupRepository) DeleteClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM class_group WHERE id = $1`, id); err != nil {
		return trapConflictErr(err, "deleting class group")
	}
	return nil
}

func (repo classGroupRepository) CountStudentsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM student WHERE class_group_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting class group students")
	}
	return count, nil
}

func (repo classGroupRepository) CountSessionsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM session WHERE class_group_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting class group sessions")
	}
	return count, nil
}

func (repo classGroupRepository) CountCoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM class_group_course WHERE class_group_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting class group courses")
	}
	return count, nil
}

func (repo classGroupRepository) CoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) ([]course.Course, error) {
	q := `
	SELECT c.id, c.name, c.description, c.area, c.shift, c.teacher_id, c.created_at, c.updated_at
	FROM course c
	JOIN class_group_course link ON link.course_id = c.id
	WHERE link.class_group_id = $1
	ORDER BY c.name ASC`
	courses := make([]course.Course, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &courses, q, id); err != nil {
		return nil, errors.Wrap(err, "querying class group courses")
	}
	return courses, nil
}
