package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tchr *teacher.Teacher, exec ...core.DBExecutor) error {
	tbl := repo.db.teacher
	tbl.Lock()
	defer tbl.Unlock()

	for _, other := range tbl.table {
		if other.Email == tchr.Email {
			return core.NewConflictError(nil, "teacher_email_key")
		}
	}
	tbl.pk++
	tchr.ID = tbl.pk
	now := time.Now().UTC()
	tchr.CreatedAt, tchr.UpdatedAt = now, now
	cp := *tchr
	tbl.table[tchr.ID] = &cp
	return nil
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	tbl := repo.db.teacher
	tbl.RLock()
	defer tbl.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(tbl.table))
	for _, tchr := range tbl.table {
		if search != "" &&
			!strings.Contains(strings.ToLower(tchr.Name), search) &&
			!strings.Contains(strings.ToLower(tchr.Email), search) &&
			!strings.Contains(tchr.NationalID, search) {
			continue
		}
		teachers = append(teachers, *tchr)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (teacher.Teacher, error) {
	tbl := repo.db.teacher
	tbl.RLock()
	defer tbl.RUnlock()

	if tchr, ok := tbl.table[id]; ok {
		return *tchr, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tchr *teacher.Teacher, exec ...core.DBExecutor) error {
	tbl := repo.db.teacher
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[tchr.ID]; !ok {
		return teacher.ErrNotFound
	}
	for _, other := range tbl.table {
		if other.ID != tchr.ID && other.Email == tchr.Email {
			return core.NewConflictError(nil, "teacher_email_key")
		}
	}
	tchr.UpdatedAt = time.Now().UTC()
	cp := *tchr
	tbl.table[tchr.ID] = &cp
	return nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	tbl := repo.db.teacher
	tbl.Lock()
	defer tbl.Unlock()

	delete(tbl.table, id)
	return nil
}

func (repo *teacherRepository) CountCoursesByTeacher(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	crsTbl := repo.db.course
	crsTbl.RLock()
	defer crsTbl.RUnlock()

	var count int
	for _, crs := range crsTbl.table {
		if crs.TeacherID == id {
			count++
		}
	}
	return count, nil
}
