package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	tbl := repo.db.enrollment
	tbl.RLock()
	defer tbl.RUnlock()

	_, ok := tbl.table[pair{studentID, courseID}]
	return ok, nil
}

func (repo *enrollmentRepository) Enroll(ctx context.Context, studentID, courseID int, on time.Time, exec ...core.DBExecutor) error {
	tbl := repo.db.enrollment
	tbl.Lock()
	defer tbl.Unlock()

	tbl.table[pair{studentID, courseID}] = on
	return nil
}

func (repo *enrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	tbl := repo.db.enrollment
	tbl.Lock()
	defer tbl.Unlock()

	key := pair{studentID, courseID}
	if _, ok := tbl.table[key]; !ok {
		return false, nil
	}
	delete(tbl.table, key)
	return true, nil
}

func (repo *enrollmentRepository) CoursesOf(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error) {
	enrTbl := repo.db.enrollment
	enrTbl.RLock()
	courseIDs := make([]int, 0)
	for key := range enrTbl.table {
		if key[0] == studentID {
			courseIDs = append(courseIDs, key[1])
		}
	}
	enrTbl.RUnlock()

	crsTbl := repo.db.course
	crsTbl.RLock()
	defer crsTbl.RUnlock()

	courses := make([]course.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		if crs, ok := crsTbl.table[id]; ok {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}
