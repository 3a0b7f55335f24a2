package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/teacher"
)

const teacherColumns = `id, name, national_id, email, phone, address,
	gender_id, race_id, disability_id, created_at, updated_at`

type teacherRepository struct {
	exec core.DBExecutor
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

func (repo teacherRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to teacher.ErrNotFound
func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tchr *teacher.Teacher, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO teacher (name, national_id, email, phone, address, gender_id, race_id, disability_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	RETURNING id, created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), tchr, q,
		tchr.Name, tchr.NationalID, tchr.Email, tchr.Phone, tchr.Address,
		tchr.GenderID, tchr.RaceID, tchr.DisabilityID, time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting teacher")
	}
	return nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	q := `SELECT ` + teacherColumns + ` FROM teacher`
	var args []interface{}
	if search != "" {
		q += ` WHERE name ILIKE $1 OR email ILIKE $1 OR national_id ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY ` + orderBy(ordering, "name ASC")

	teachers := make([]teacher.Teacher, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &teachers, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var tchr teacher.Teacher
	q := `SELECT ` + teacherColumns + ` FROM teacher WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &tchr, q, id); err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by ID")
	}
	return tchr, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tchr *teacher.Teacher, exec ...core.DBExecutor) error {
	q := `
	UPDATE teacher
	SET name = $2, national_id = $3, email = $4, phone = $5, address = $6,
	    gender_id = $7, race_id = $8, disability_id = $9, updated_at = $10
	WHERE id = $1
	RETURNING updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), tchr, q,
		tchr.ID, tchr.Name, tchr.NationalID, tchr.Email, tchr.Phone, tchr.Address,
		tchr.GenderID, tchr.RaceID, tchr.DisabilityID, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return teacher.ErrNotFound
		}
		return trapConflictErr(err, "updating teacher")
	}
	return nil
}

func (repo teacherRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM teacher WHERE id = $1`, id); err != nil {
		return trapConflictErr(err, "deleting teacher")
	}
	return nil
}

func (repo teacherRepository) CountCoursesByTeacher(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM course WHERE teacher_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting teacher courses")
	}
	return count, nil
}
