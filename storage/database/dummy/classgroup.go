package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
)

type classGroupRepository struct {
	db *DB
}

var _ classgroup.Repository = (*classGroupRepository)(nil) // interface compliance check

func NewClassGroupRepository(db *DB) *classGroupRepository {
	return &classGroupRepository{db: db}
}

func (repo *classGroupRepository) CreateClassGroup(ctx context.Context, cg *classgroup.ClassGroup, exec ...core.DBExecutor) error {
	tbl := repo.db.classGroup
	tbl.Lock()
	defer tbl.Unlock()

	for _, other := range tbl.table {
		if other.Name == cg.Name {
			return core.NewConflictError(nil, "class_group_name_key")
		}
	}
	tbl.pk++
	cg.ID = tbl.pk
	now := time.Now().UTC()
	cg.CreatedAt, cg.UpdatedAt = now, now
	cp := *cg
	tbl.table[cg.ID] = &cp
	return nil
}

func (repo *classGroupRepository) QueryClassGroups(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]classgroup.ClassGroup, error) {
	tbl := repo.db.classGroup
	tbl.RLock()
	defer tbl.RUnlock()

	groups := make([]classgroup.ClassGroup, 0, len(tbl.table))
	for _, cg := range tbl.table {
		if search != "" &&
			!strings.Contains(strings.ToLower(cg.Name), search) &&
			!strings.Contains(strings.ToLower(cg.Description), search) {
			continue
		}
		groups = append(groups, *cg)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *classGroupRepository) GetClassGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (classgroup.ClassGroup, error) {
	tbl := repo.db.classGroup
	tbl.RLock()
	defer tbl.RUnlock()

	if cg, ok := tbl.table[id]; ok {
		return *cg, nil
	}
	return classgroup.ClassGroup{}, classgroup.ErrNotFound
}

func (repo *classGroupRepository) UpdateClassGroup(ctx context.Context, cg *classgroup.ClassGroup, exec ...core.DBExecutor) error {
	tbl := repo.db.classGroup
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[cg.ID]; !ok {
		return classgroup.ErrNotFound
	}
	for _, other := range tbl.table {
		if other.ID != cg.ID && other.Name == cg.Name {
			return core.NewConflictError(nil, "class_group_name_key")
		}
	}
	cg.UpdatedAt = time.Now().UTC()
	cp := *cg
	tbl.table[cg.ID] = &cp
	return nil
}

func (repo *classGroupRepository) DeleteClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) error {
	tbl := repo.db.classGroup
	tbl.Lock()
	defer tbl.Unlock()

	delete(tbl.table, id)
	return nil
}

func (repo *classGroupRepository) CountStudentsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	stdTbl := repo.db.student
	stdTbl.RLock()
	defer stdTbl.RUnlock()

	var count int
	for _, std := range stdTbl.table {
		if std.ClassGroupID.Valid && std.ClassGroupID.Int == id {
			count++
		}
	}
	return count, nil
}

func (repo *classGroupRepository) CountSessionsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	attTbl := repo.db.attendance
	attTbl.RLock()
	defer attTbl.RUnlock()

	var count int
	for _, sess := range attTbl.sessions {
		if sess.ClassGroupID == id {
			count++
		}
	}
	return count, nil
}

func (repo *classGroupRepository) CountCoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	crsTbl := repo.db.course
	crsTbl.RLock()
	defer crsTbl.RUnlock()

	var count int
	for link := range crsTbl.groupLinks {
		if link[0] == id {
			count++
		}
	}
	return count, nil
}

func (repo *classGroupRepository) CoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) ([]course.Course, error) {
	crsTbl := repo.db.course
	crsTbl.RLock()
	defer crsTbl.RUnlock()

	courses := make([]course.Course, 0)
	for link := range crsTbl.groupLinks {
		if link[0] != id {
			continue
		}
		if crs, ok := crsTbl.table[link[1]]; ok {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}
