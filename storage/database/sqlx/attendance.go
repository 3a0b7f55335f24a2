package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
)

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo attendanceRepository) CreateSession(ctx context.Context, sess *attendance.Session, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO session (class_group_id, date, topic, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4)
	RETURNING id, created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), sess, q,
		sess.ClassGroupID, sess.Date, sess.Topic, time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting session")
	}
	return nil
}

func (repo attendanceRepository) SessionsByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]attendance.Session, error) {
	q := `
	SELECT id, class_group_id, date, topic, created_at, updated_at
	FROM session
	WHERE class_group_id = $1
	ORDER BY date DESC, id DESC`
	sessions := make([]attendance.Session, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &sessions, q, classGroupID); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	return sessions, nil
}

func (repo attendanceRepository) GetSessionByID(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Session, error) {
	var sess attendance.Session
	q := `SELECT id, class_group_id, date, topic, created_at, updated_at FROM session WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &sess, q, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "finding session by ID")
	}
	return sess, nil
}

func (repo attendanceRepository) GetRecord(ctx context.Context, studentID, sessionID int, exec ...core.DBExecutor) (attendance.Record, error) {
	var rec attendance.Record
	q := `
	SELECT student_id, session_id, status, created_at, updated_at
	FROM attendance
	WHERE student_id = $1 AND session_id = $2`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &rec, q, studentID, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "finding attendance record")
	}
	return rec, nil
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec *attendance.Record, exec ...core.DBExecutor) error {
	q := `
	INSERT INTO attendance (student_id, session_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4)
	RETURNING created_at, updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), rec, q,
		rec.StudentID, rec.SessionID, rec.Status, time.Now().UTC(),
	)
	if err != nil {
		return trapConflictErr(err, "inserting attendance record")
	}
	return nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec *attendance.Record, exec ...core.DBExecutor) error {
	q := `
	UPDATE attendance
	SET status = $3, updated_at = $4
	WHERE student_id = $1 AND session_id = $2
	RETURNING updated_at`
	err := sqlx.GetContext(ctx, repo.getExec(exec), rec, q,
		rec.StudentID, rec.SessionID, rec.Status, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.ErrRecordNotFound
		}
		return errors.Wrap(err, "updating attendance record")
	}
	return nil
}

// CountSessionsForStudent counts every session of the student's current class
// group, whether or not the student has a record for it.
func (repo attendanceRepository) CountSessionsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	var count int
	q := `
	SELECT COUNT(*)
	FROM session s
	         JOIN student st ON st.class_group_id = s.class_group_id
	WHERE st.id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, q, studentID); err != nil {
		return 0, errors.Wrap(err, "counting student sessions")
	}
	return count, nil
}

func (repo attendanceRepository) CountStatuses(ctx context.Context, studentID int, exec ...core.DBExecutor) (attendance.StatusCounts, error) {
	var counts attendance.StatusCounts
	q := `
	SELECT COUNT(*) FILTER (WHERE status = 'present') AS present,
	       COUNT(*) FILTER (WHERE status = 'absent')  AS absent,
	       COUNT(*) FILTER (WHERE status = 'excused') AS excused
	FROM attendance
	WHERE student_id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &counts, q, studentID); err != nil {
		return attendance.StatusCounts{}, errors.Wrap(err, "counting attendance statuses")
	}
	return counts, nil
}

func (repo attendanceRepository) RosterByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]attendance.RosterMember, error) {
	q := `
	SELECT id AS student_id, name, email
	FROM student
	WHERE class_group_id = $1
	ORDER BY id`
	members := make([]attendance.RosterMember, 0)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &members, q, classGroupID); err != nil {
		return nil, errors.Wrap(err, "querying class group roster")
	}
	return members, nil
}
