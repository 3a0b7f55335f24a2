package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/student"
	"github.com/dmorais/escolar/core/teacher"
	"github.com/dmorais/escolar/core/user"
)

// RandomEmail returns a unique address so fixtures never trip the email
// uniqueness constraint.
func RandomEmail() string {
	return uuid.New().String()[:8] + "@test.cd"
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name string) teacher.Teacher {
	t.Helper()

	tchr := teacher.Teacher{
		Name:  name,
		Email: RandomEmail(),
	}
	if err := repo.CreateTeacher(context.Background(), &tchr); err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateClassGroup(t *testing.T, repo classgroup.Repository, name string, shift core.Shift) classgroup.ClassGroup {
	t.Helper()

	cg := classgroup.ClassGroup{
		Name:  name,
		Shift: shift,
	}
	if err := repo.CreateClassGroup(context.Background(), &cg); err != nil {
		t.Fatalf("CreateClassGroup() failed: %v", err)
	}
	return cg
}

func CreateStudent(t *testing.T, repo student.Repository, name string, classGroupID ...int) student.Student {
	t.Helper()

	std := student.Student{
		Name:       name,
		Email:      RandomEmail(),
		EnrolledOn: core.Today(),
	}
	if len(classGroupID) > 0 {
		std.ClassGroupID = null.IntFrom(classGroupID[0])
	}
	if err := repo.CreateStudent(context.Background(), &std); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateCourse(t *testing.T, repo course.Repository, name string, teacherID int) course.Course {
	t.Helper()

	crs := course.Course{
		Name:      name,
		Area:      course.AreaHumanities,
		Shift:     core.ShiftMorning,
		TeacherID: teacherID,
	}
	if err := repo.CreateCourse(context.Background(), &crs); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateSession(t *testing.T, repo attendance.Repository, classGroupID int, date time.Time) attendance.Session {
	t.Helper()

	sess := attendance.Session{
		ClassGroupID: classGroupID,
		Date:         date,
	}
	if err := repo.CreateSession(context.Background(), &sess); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}
