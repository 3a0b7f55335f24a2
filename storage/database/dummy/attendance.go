package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, sess *attendance.Session, exec ...core.DBExecutor) error {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	tbl.sessionPK++
	sess.ID = tbl.sessionPK
	now := time.Now().UTC()
	sess.CreatedAt, sess.UpdatedAt = now, now
	cp := *sess
	tbl.sessions[sess.ID] = &cp
	return nil
}

func (repo *attendanceRepository) SessionsByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]attendance.Session, error) {
	tbl := repo.db.attendance
	tbl.RLock()
	defer tbl.RUnlock()

	sessions := make([]attendance.Session, 0)
	for _, sess := range tbl.sessions {
		if sess.ClassGroupID == classGroupID {
			sessions = append(sessions, *sess)
		}
	}
	// most recent first
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions, nil
}

func (repo *attendanceRepository) GetSessionByID(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Session, error) {
	tbl := repo.db.attendance
	tbl.RLock()
	defer tbl.RUnlock()

	if sess, ok := tbl.sessions[id]; ok {
		return *sess, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, studentID, sessionID int, exec ...core.DBExecutor) (attendance.Record, error) {
	tbl := repo.db.attendance
	tbl.RLock()
	defer tbl.RUnlock()

	if rec, ok := tbl.records[recordKey{studentID, sessionID}]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec *attendance.Record, exec ...core.DBExecutor) error {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	cp := *rec
	tbl.records[recordKey{rec.StudentID, rec.SessionID}] = &cp
	return nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, rec *attendance.Record, exec ...core.DBExecutor) error {
	tbl := repo.db.attendance
	tbl.Lock()
	defer tbl.Unlock()

	key := recordKey{rec.StudentID, rec.SessionID}
	if _, ok := tbl.records[key]; !ok {
		return attendance.ErrRecordNotFound
	}
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	tbl.records[key] = &cp
	return nil
}

func (repo *attendanceRepository) CountSessionsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error) {
	stdTbl := repo.db.student
	stdTbl.RLock()
	std, ok := stdTbl.table[studentID]
	var classGroupID int
	if ok && std.ClassGroupID.Valid {
		classGroupID = std.ClassGroupID.Int
	}
	stdTbl.RUnlock()
	if classGroupID == 0 {
		return 0, nil
	}

	attTbl := repo.db.attendance
	attTbl.RLock()
	defer attTbl.RUnlock()

	var count int
	for _, sess := range attTbl.sessions {
		if sess.ClassGroupID == classGroupID {
			count++
		}
	}
	return count, nil
}

func (repo *attendanceRepository) CountStatuses(ctx context.Context, studentID int, exec ...core.DBExecutor) (attendance.StatusCounts, error) {
	tbl := repo.db.attendance
	tbl.RLock()
	defer tbl.RUnlock()

	var counts attendance.StatusCounts
	for key, rec := range tbl.records {
		if key.studentID != studentID {
			continue
		}
		switch rec.Status {
		case attendance.StatusPresent:
			counts.Present++
		case attendance.StatusAbsent:
			counts.Absent++
		case attendance.StatusExcused:
			counts.Excused++
		}
	}
	return counts, nil
}

func (repo *attendanceRepository) RosterByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]attendance.RosterMember, error) {
	stdTbl := repo.db.student
	stdTbl.RLock()
	defer stdTbl.RUnlock()

	members := make([]attendance.RosterMember, 0)
	for _, std := range stdTbl.table {
		if std.ClassGroupID.Valid && std.ClassGroupID.Int == classGroupID {
			members = append(members, attendance.RosterMember{
				StudentID: std.ID,
				Name:      std.Name,
				Email:     std.Email,
			})
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].StudentID < members[j].StudentID })
	return members, nil
}
