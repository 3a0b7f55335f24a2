// Package dummydb provides in-memory repositories for tests and local
// hacking; no database required.
package dummydb

import (
	"sync"
	"time"

	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/lookup"
	"github.com/dmorais/escolar/core/student"
	"github.com/dmorais/escolar/core/teacher"
	"github.com/dmorais/escolar/core/user"
)

type (
	pair [2]int // composite key: (student, course) or (class group, course)

	recordKey struct {
		studentID, sessionID int
	}

	DB struct {
		user       *userTable
		lookup     *lookupTable
		teacher    *teacherTable
		student    *studentTable
		classGroup *classGroupTable
		course     *courseTable
		enrollment *enrollmentTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		pk    int
	}

	lookupTable struct {
		sync.RWMutex
		genders      []lookup.Entry
		races        []lookup.Entry
		disabilities []lookup.Entry
	}

	teacherTable struct {
		sync.RWMutex
		table map[int]*teacher.Teacher
		pk    int
	}

	studentTable struct {
		sync.RWMutex
		table map[int]*student.Student
		pk    int
	}

	classGroupTable struct {
		sync.RWMutex
		table map[int]*classgroup.ClassGroup
		pk    int
	}

	courseTable struct {
		sync.RWMutex
		table      map[int]*course.Course
		groupLinks map[pair]struct{} // (class group, course)
		pk         int
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[pair]time.Time // (student, course) -> enrolled on
	}

	attendanceTable struct {
		sync.RWMutex
		sessions  map[int]*attendance.Session
		records   map[recordKey]*attendance.Record
		sessionPK int
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		lookup: &lookupTable{
			genders:      seedEntries("cis man", "cis woman", "trans man", "trans woman", "non-binary", "undeclared"),
			races:        seedEntries("white", "mixed", "black", "asian", "indigenous", "undeclared"),
			disabilities: seedEntries("physical disability", "hearing disability", "visual disability", "intellectual disability", "neurodivergence", "undeclared"),
		},
		teacher:    &teacherTable{table: make(map[int]*teacher.Teacher)},
		student:    &studentTable{table: make(map[int]*student.Student)},
		classGroup: &classGroupTable{table: make(map[int]*classgroup.ClassGroup)},
		course: &courseTable{
			table:      make(map[int]*course.Course),
			groupLinks: make(map[pair]struct{}),
		},
		enrollment: &enrollmentTable{table: make(map[pair]time.Time)},
		attendance: &attendanceTable{
			sessions: make(map[int]*attendance.Session),
			records:  make(map[recordKey]*attendance.Record),
		},
	}
	return db, nil
}

func seedEntries(labels ...string) []lookup.Entry {
	entries := make([]lookup.Entry, 0, len(labels))
	for i, label := range labels {
		entries = append(entries, lookup.Entry{ID: i + 1, Label: label})
	}
	return entries
}

// LinkCourseToClassGroup wires a (class group, course) link directly; tests
// use it to exercise delete preconditions.
func (db *DB) LinkCourseToClassGroup(classGroupID, courseID int) {
	db.course.Lock()
	defer db.course.Unlock()
	db.course.groupLinks[pair{classGroupID, courseID}] = struct{}{}
}
