package attendance

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
)

// Status is a student's state for a single session. Absent is the default
// when a roll call carries no entry for a roster member.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusExcused Status = "excused"
)

var ErrInvalidStatus = errors.New("invalid attendance status")

// ParseStatus parses s into a Status, ignoring case and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	switch Status(core.CleanString(s, true /* lower */)) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	case StatusExcused:
		return StatusExcused, nil
	}
	return "", ErrInvalidStatus
}

// Session is one class meeting of a ClassGroup on a given date.
type Session struct {
	ID           int       `json:"id" db:"id"`
	ClassGroupID int       `json:"class_group_id" db:"class_group_id"`
	Date         time.Time `json:"date" db:"date"`
	Topic        string    `json:"topic" db:"topic"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewSession contains information needed to open a new Session.
// Date defaults to today when omitted.
type NewSession struct {
	Date  time.Time `json:"date"`
	Topic string    `json:"topic"`
}

func (ns *NewSession) Validate() error {
	ns.Topic = core.CleanString(ns.Topic)
	if ns.Date.IsZero() {
		ns.Date = core.Today()
	}
	return nil
}

// Record is one student's status for one session. A (student, session) pair
// has at most one record; recording again overwrites the status.
type Record struct {
	StudentID int       `json:"student_id" db:"student_id"`
	SessionID int       `json:"session_id" db:"session_id"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// StatusCounts is a per-status breakdown of a student's records. Sessions
// with no record for the student land in no bucket at all.
type StatusCounts struct {
	Present int `json:"present" db:"present"`
	Absent  int `json:"absent" db:"absent"`
	Excused int `json:"excused" db:"excused"`
}

// Report summarises a student's attendance across every session of their
// class group. ValidSessions removes excused absences from the denominator;
// PresenceRatio is a percentage in [0, 100].
type Report struct {
	TotalSessions int     `json:"total_sessions"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Excused       int     `json:"excused"`
	ValidSessions int     `json:"valid_sessions"`
	PresenceRatio float64 `json:"presence_ratio"`
}

// RosterMember is a student of a class group as seen by roll calls and
// risk rankings.
type RosterMember struct {
	StudentID int    `json:"student_id" db:"student_id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
}

// RankedMember pairs a roster member with their report; rankings are sorted
// ascending by presence ratio so the riskiest students come first.
type RankedMember struct {
	Student RosterMember `json:"student"`
	Report  Report       `json:"report"`
}

// BatchFailure records why one student of a roll call could not be saved.
type BatchFailure struct {
	StudentID int    `json:"student_id"`
	Error     string `json:"error"`
}

// BatchError aggregates per-student roll call failures; the remaining
// students of the batch were still saved.
type BatchError struct {
	Failures []BatchFailure
}

func (err BatchError) Error() string {
	return fmt.Sprintf("roll call failed for %d student(s)", len(err.Failures))
}
