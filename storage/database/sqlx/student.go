package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/student"
)

const studentColumns = `id, name, birth_date, national_id, email, phone, address,
	enrolled_on, completed_on, notes, class_group_id, gender_id, race_id, disability_id,
	created_at, updated_at`

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO student (name, birth_date, national_id, email, phone, address, enrolled_on,
	                     notes, class_group_id, gender_id, race_id, disability_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	RETURNING id, created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), std, q,
		std.Name, std.BirthDate, std.NationalID, std.Email, std.Phone, std.Address,
		std.EnrolledOn, std.Notes, std.ClassGroupID, std.GenderID, std.RaceID, std.DisabilityID,
		time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting student")
	}
	return nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, fmt.Sprintf(
				"(name ILIKE %[1]s OR email ILIKE %[1]s OR national_id ILIKE %[1]s)", arg(val)))
		}
		if filter.ClassGroupID.Valid {
			conds = append(conds, "class_group_id = "+arg(filter.ClassGroupID.Int))
		}
		if filter.Active != nil {
			if *filter.Active {
				conds = append(conds, "completed_on IS NULL")
			} else {
				conds = append(conds, "completed_on IS NOT NULL")
			}
		}
	}

	q := `SELECT ` + studentColumns + ` FROM student`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "name ASC")

	students := make([]student.Student, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var std student.Student
	q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &std, q, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return std, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	q := `
	UPDATE student
	SET name = $2, birth_date = $3, national_id = $4, email = $5, phone = $6, address = $7,
	    enrolled_on = $8, completed_on = $9, notes = $10, class_group_id = $11,
	    gender_id = $12, race_id = $13, disability_id = $14, updated_at = $15
	WHERE id = $1
	RETURNING updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), std, q,
		std.ID, std.Name, std.BirthDate, std.NationalID, std.Email, std.Phone, std.Address,
		std.EnrolledOn, std.CompletedOn, std.Notes, std.ClassGroupID,
		std.GenderID, std.RaceID, std.DisabilityID, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.ErrNotFound
		}
		return trapConflictErr(err, "updating student")
	}
	return nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return trapConflictErr(err, "deleting student")
	}
	return nil
}

func (repo studentRepository) CountAttendanceRecords(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM attendance WHERE student_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting student attendance records")
	}
	return count, nil
}

func (repo studentRepository) CountEnrollments(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM course_student WHERE student_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, id); err != nil {
		return 0, errors.Wrap(err, "counting student enrollments")
	}
	return count, nil
}
