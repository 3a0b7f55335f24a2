package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	if err := checkStudentUnique(tbl, std); err != nil {
		return err
	}
	tbl.pk++
	std.ID = tbl.pk
	now := time.Now().UTC()
	std.CreatedAt, std.UpdatedAt = now, now
	cp := *std
	tbl.table[std.ID] = &cp
	return nil
}

// checkStudentUnique mirrors the partial unique indexes on national_id and
// email: blank values never collide. Caller holds the table lock.
func checkStudentUnique(tbl *studentTable, std *student.Student) error {
	for _, other := range tbl.table {
		if other.ID == std.ID {
			continue
		}
		if std.NationalID != "" && other.NationalID == std.NationalID {
			return core.NewConflictError(nil, "student_national_id_key")
		}
		if std.Email != "" && other.Email == std.Email {
			return core.NewConflictError(nil, "student_email_key")
		}
	}
	return nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	tbl := repo.db.student
	tbl.RLock()
	defer tbl.RUnlock()

	students := make([]student.Student, 0, len(tbl.table))
	for _, std := range tbl.table {
		if filter != nil {
			if filter.Search != "" &&
				!strings.Contains(strings.ToLower(std.Name), filter.Search) &&
				!strings.Contains(strings.ToLower(std.Email), filter.Search) &&
				!strings.Contains(std.NationalID, filter.Search) {
				continue
			}
			if filter.ClassGroupID.Valid && std.ClassGroupID != filter.ClassGroupID {
				continue
			}
			if filter.Active != nil && std.Active() != *filter.Active {
				continue
			}
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	tbl := repo.db.student
	tbl.RLock()
	defer tbl.RUnlock()

	if std, ok := tbl.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[std.ID]; !ok {
		return student.ErrNotFound
	}
	if err := checkStudentUnique(tbl, std); err != nil {
		return err
	}
	std.UpdatedAt = time.Now().UTC()
	cp := *std
	tbl.table[std.ID] = &cp
	return nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	delete(tbl.table, id)
	return nil
}

func (repo *studentRepository) CountAttendanceRecords(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	attTbl := repo.db.attendance
	attTbl.RLock()
	defer attTbl.RUnlock()

	var count int
	for key := range attTbl.records {
		if key.studentID == id {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) CountEnrollments(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	enrTbl := repo.db.enrollment
	enrTbl.RLock()
	defer enrTbl.RUnlock()

	var count int
	for key := range enrTbl.table {
		if key[0] == id {
			count++
		}
	}
	return count, nil
}
