package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	tbl := repo.db.course
	tbl.Lock()
	defer tbl.Unlock()

	for _, other := range tbl.table {
		if other.Name == crs.Name {
			return core.NewConflictError(nil, "course_name_key")
		}
	}
	tbl.pk++
	crs.ID = tbl.pk
	now := time.Now().UTC()
	crs.CreatedAt, crs.UpdatedAt = now, now
	cp := *crs
	tbl.table[crs.ID] = &cp
	return nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]course.Course, error) {
	tbl := repo.db.course
	tbl.RLock()
	defer tbl.RUnlock()

	courses := make([]course.Course, 0, len(tbl.table))
	for _, crs := range tbl.table {
		if search != "" &&
			!strings.Contains(strings.ToLower(crs.Name), search) &&
			!strings.Contains(strings.ToLower(crs.Description), search) {
			continue
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	tbl := repo.db.course
	tbl.RLock()
	defer tbl.RUnlock()

	if crs, ok := tbl.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	tbl := repo.db.course
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[crs.ID]; !ok {
		return course.ErrNotFound
	}
	for _, other := range tbl.table {
		if other.ID != crs.ID && other.Name == crs.Name {
			return core.NewConflictError(nil, "course_name_key")
		}
	}
	crs.UpdatedAt = time.Now().UTC()
	cp := *crs
	tbl.table[crs.ID] = &cp
	return nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	tbl := repo.db.course
	tbl.Lock()
	defer tbl.Unlock()

	delete(tbl.table, id)
	return nil
}

func (repo *courseRepository) CountEnrollmentsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	enrTbl := repo.db.enrollment
	enrTbl.RLock()
	defer enrTbl.RUnlock()

	var count int
	for key := range enrTbl.table {
		if key[1] == id {
			count++
		}
	}
	return count, nil
}

func (repo *courseRepository) CountClassGroupsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	tbl := repo.db.course
	tbl.RLock()
	defer tbl.RUnlock()

	var count int
	for link := range tbl.groupLinks {
		if link[1] == id {
			count++
		}
	}
	return count, nil
}
