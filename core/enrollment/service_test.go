package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/student"
)

type membership struct {
	studentID, courseID int
	on                  time.Time
}

type fakeRepo struct {
	memberships []membership
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	for _, m := range r.memberships {
		if m.studentID == studentID && m.courseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Enroll(ctx context.Context, studentID, courseID int, on time.Time, exec ...core.DBExecutor) error {
	r.memberships = append(r.memberships, membership{studentID, courseID, on})
	return nil
}

func (r *fakeRepo) Unenroll(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	for i, m := range r.memberships {
		if m.studentID == studentID && m.courseID == courseID {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CoursesOf(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error) {
	var res []course.Course
	for _, m := range r.memberships {
		if m.studentID == studentID {
			res = append(res, course.Course{ID: m.courseID})
		}
	}
	return res, nil
}

type fakeStudentRepo struct {
	students map[int]student.Student
}

var _ student.Repository = (*fakeStudentRepo)(nil)

func (r *fakeStudentRepo) CreateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	r.students[std.ID] = *std
	return nil
}

func (r *fakeStudentRepo) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	return nil, nil
}

func (r *fakeStudentRepo) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	std, ok := r.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (r *fakeStudentRepo) UpdateStudent(ctx context.Context, std *student.Student, exec ...core.DBExecutor) error {
	return nil
}

func (r *fakeStudentRepo) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	return nil
}

func (r *fakeStudentRepo) CountAttendanceRecords(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return 0, nil
}

func (r *fakeStudentRepo) CountEnrollments(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return 0, nil
}

type fakeCourseRepo struct {
	courses map[int]course.Course
}

var _ course.Repository = (*fakeCourseRepo)(nil)

func (r *fakeCourseRepo) CreateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	r.courses[crs.ID] = *crs
	return nil
}

func (r *fakeCourseRepo) QueryCourses(ctx context.Context, search string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]course.Course, error) {
	return nil, nil
}

func (r *fakeCourseRepo) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	crs, ok := r.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (r *fakeCourseRepo) UpdateCourse(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	return nil
}

func (r *fakeCourseRepo) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	return nil
}

func (r *fakeCourseRepo) CountEnrollmentsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return 0, nil
}

func (r *fakeCourseRepo) CountClassGroupsByCourse(ctx context.Context, id int, exec ...core.DBExecutor) (int, error) {
	return 0, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := &fakeRepo{}
	stdRepo := &fakeStudentRepo{students: map[int]student.Student{
		1: {ID: 1, Name: "S1", ClassGroupID: null.IntFrom(1)},
	}}
	crsRepo := &fakeCourseRepo{courses: map[int]course.Course{
		10: {ID: 10, Name: "Algebra"},
		11: {ID: 11, Name: "History"},
	}}
	return NewService(repo, stdRepo, crsRepo), repo
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	require.NoError(t, svc.Enroll(ctx, 1, 10))
	require.Len(t, repo.memberships, 1)
	assert.False(t, repo.memberships[0].on.IsZero())

	// enrolling twice fails and leaves the membership untouched
	err := svc.Enroll(ctx, 1, 10)
	assert.Equal(t, ErrAlreadyEnrolled, err)
	assert.Len(t, repo.memberships, 1)

	// unknown student / course
	assert.Equal(t, student.ErrNotFound, svc.Enroll(ctx, 404, 10))
	assert.Equal(t, course.ErrNotFound, svc.Enroll(ctx, 1, 404))
}

func TestUnenroll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.Enroll(ctx, 1, 10))

	removed, err := svc.Unenroll(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, removed)

	// second removal is a no-op, not an error
	removed, err = svc.Unenroll(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.Enroll(ctx, 1, 10))
	require.NoError(t, svc.Enroll(ctx, 1, 11))

	courses, err := svc.Courses(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	_, err = svc.Courses(ctx, 404)
	assert.Equal(t, student.ErrNotFound, err)
}
