package classgroup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
)

type fakeRepo struct {
	groups   map[int]ClassGroup
	students map[int]int // class group id -> enrolled student count
	sessions map[int]int
	courses  map[int]int
	nextPK   int
	deleted  []int
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		groups:   make(map[int]ClassGroup),
		students: make(map[int]int),
		sessions: make(map[int]int),
		courses:  make(map[int]int),
	}
}

func (r *fakeRepo) CreateClassGroup(ctx context.Context, cg *ClassGroup, exec ...core.DBExecutor) error {
	r.nextPK++
	cg.ID = r.nextPK
	r.groups[cg.ID] = *cg
	return nil
}

func (r *fakeRepo) QueryClassGroups(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ClassGroup, error) {
	var res []ClassGroup
	for _, cg := range r.groups {
		res = append(res, cg)
	}
	return res, nil
}

func (r *fakeRepo) GetClassGroupByID(ctx context.Context, id int, exec ...core.DBExecutor) (ClassGroup, error) {
	cg, ok := r.groups[id]
	if !ok {
		return ClassGroup{}, ErrNotFound
	}
	return cg, nil
}

func (r *fakeRepo) UpdateClassGroup(ctx context.Context, cg *ClassGroup, exec ...core.DBExecutor) error {
	r.groups[cg.ID] = *cg
	return nil
}

func (r *fakeRepo) DeleteClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) error {
	delete(r.groups, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) CountStudentsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return r.students[id], nil
}

func (r *fakeRepo) CountSessionsByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return r.sessions[id], nil
}

func (r *fakeRepo) CountCoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return r.courses[id], nil
}

func (r *fakeRepo) CoursesByClassGroup(ctx context.Context, id int, exec ...core.DBExecutor) ([]course.Course, error) {
	return make([]course.Course, 0, r.courses[id]), nil
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	tests := []struct {
		name      string
		ncg       NewClassGroup
		wantShift core.Shift
		wantErr   bool
	}{
		{name: "missing name", ncg: NewClassGroup{Shift: "morning"}, wantErr: true},
		{name: "missing shift", ncg: NewClassGroup{Name: "3A"}, wantErr: true},
		{name: "invalid shift", ncg: NewClassGroup{Name: "3A", Shift: "midnight"}, wantErr: true},
		{name: "ok", ncg: NewClassGroup{Name: "  3A ", Shift: "Morning"}, wantShift: core.ShiftMorning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cg, err := svc.Create(ctx, tt.ncg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, cg.ID)
			assert.Equal(t, "3A", cg.Name)
			assert.Equal(t, tt.wantShift, cg.Shift)
		})
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	cg, err := svc.Create(ctx, NewClassGroup{Name: "3A", Description: "seniors", Shift: "evening"})
	require.NoError(t, err)

	// only the name changes, everything else is kept
	got, err := svc.Update(ctx, cg.ID, UpdateClassGroup{Name: "3B"})
	require.NoError(t, err)
	assert.Equal(t, "3B", got.Name)
	assert.Equal(t, "seniors", got.Description)
	assert.Equal(t, core.ShiftEvening, got.Shift)
}

func TestServiceDeleteBlockedByDependents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	cg, err := svc.Create(ctx, NewClassGroup{Name: "3A", Shift: "morning"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		setup   func()
		wantDep string
	}{
		{
			name:    "enrolled students block deletion",
			setup:   func() { repo.students[cg.ID] = 2 },
			wantDep: "students",
		},
		{
			name:    "sessions block deletion",
			setup:   func() { repo.students[cg.ID] = 0; repo.sessions[cg.ID] = 1 },
			wantDep: "sessions",
		},
		{
			name:    "linked courses block deletion",
			setup:   func() { repo.sessions[cg.ID] = 0; repo.courses[cg.ID] = 3 },
			wantDep: "courses",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			err := svc.Delete(ctx, cg.ID)
			depErr, ok := err.(*core.HasDependentsError)
			require.True(t, ok, "expected HasDependentsError, got %v", err)
			assert.Equal(t, "class group", depErr.Entity)
			assert.Equal(t, tt.wantDep, depErr.Dependents)

			// the row is left intact
			_, err = svc.GetByID(ctx, cg.ID)
			assert.NoError(t, err)
			assert.Empty(t, repo.deleted)
		})
	}

	// once nothing depends on it the group goes away
	repo.courses[cg.ID] = 0
	require.NoError(t, svc.Delete(ctx, cg.ID))
	_, err = svc.GetByID(ctx, cg.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestServiceDeleteNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())
	err := svc.Delete(context.Background(), 404)
	assert.Equal(t, ErrNotFound, err)
}
