package attendance

import (
	"context"
	"net/mail"
	"sort"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/classgroup"
)

var (
	// ErrSessionNotFound is used when a specific Session is requested but does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRecordNotFound is used when no record exists for a (student, session) pair.
	ErrRecordNotFound = errors.New("attendance record not found")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess *Session, exec ...core.DBExecutor) error
		// SessionsByClassGroup returns sessions most recent first.
		SessionsByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]Session, error)
		GetSessionByID(ctx context.Context, id int, exec ...core.DBExecutor) (Session, error)
		GetRecord(ctx context.Context, studentID, sessionID int, exec ...core.DBExecutor) (Record, error)
		CreateRecord(ctx context.Context, rec *Record, exec ...core.DBExecutor) error
		UpdateRecord(ctx context.Context, rec *Record, exec ...core.DBExecutor) error
		// CountSessionsForStudent counts every session of the student's current
		// class group, including sessions held before the student joined.
		CountSessionsForStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) (int, error)
		CountStatuses(ctx context.Context, studentID int, exec ...core.DBExecutor) (StatusCounts, error)
		// RosterByClassGroup returns members ordered by student id ascending.
		RosterByClassGroup(ctx context.Context, classGroupID int, exec ...core.DBExecutor) ([]RosterMember, error)
	}

	Service interface {
		CreateSession(ctx context.Context, classGroupID int, ns NewSession) (Session, error)
		Sessions(ctx context.Context, classGroupID int) ([]Session, error)
		RecordStatus(ctx context.Context, studentID, sessionID int, status Status) (Record, error)
		RecordRoster(ctx context.Context, sessionID int, statuses map[int]Status) error
		Report(ctx context.Context, studentID int) (Report, error)
		RankRoster(ctx context.Context, classGroupID int) ([]RankedMember, error)
		NotifyAtRisk(ctx context.Context, classGroupID int) ([]RankedMember, error)
	}

	service struct {
		db            core.DB
		repo          Repository
		cgRepo        classgroup.Repository
		mailSvc       core.EmailService
		riskThreshold float64
		sendMailSync  bool
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, cgRepo classgroup.Repository, mailSvc core.EmailService) Service {
	return &service{
		db:            db,
		repo:          repo,
		cgRepo:        cgRepo,
		mailSvc:       mailSvc,
		riskThreshold: core.Conf.RiskThreshold,
		sendMailSync:  core.Conf.TestMode,
	}
}

func (svc *service) CreateSession(ctx context.Context, classGroupID int, ns NewSession) (Session, error) {
	if err := ns.Validate(); err != nil {
		return Session{}, err
	}
	if _, err := svc.cgRepo.GetClassGroupByID(ctx, classGroupID); err != nil {
		return Session{}, err
	}
	sess := Session{
		ClassGroupID: classGroupID,
		Date:         ns.Date,
		Topic:        ns.Topic,
	}
	if err := svc.repo.CreateSession(ctx, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (svc *service) Sessions(ctx context.Context, classGroupID int) ([]Session, error) {
	if _, err := svc.cgRepo.GetClassGroupByID(ctx, classGroupID); err != nil {
		return nil, err
	}
	return svc.repo.SessionsByClassGroup(ctx, classGroupID)
}

// RecordStatus upserts the student's status for the session; recording twice
// overwrites the previous status. The read-then-write runs in one transaction.
func (svc *service) RecordStatus(ctx context.Context, studentID, sessionID int, status Status) (Record, error) {
	if _, err := svc.repo.GetSessionByID(ctx, sessionID); err != nil {
		return Record{}, err
	}
	var rec Record
	err := core.AtomicFn(ctx, svc.db, func(exec ...core.DBExecutor) error {
		existing, err := svc.repo.GetRecord(ctx, studentID, sessionID, exec...)
		switch errors.Cause(err) {
		case nil:
			existing.Status = status
			if err = svc.repo.UpdateRecord(ctx, &existing, exec...); err != nil {
				return err
			}
			rec = existing
		case ErrRecordNotFound:
			rec = Record{StudentID: studentID, SessionID: sessionID, Status: status}
			if err = svc.repo.CreateRecord(ctx, &rec, exec...); err != nil {
				return err
			}
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordRoster saves a whole roll call for the session's class group. Roster
// members with no entry in statuses are marked absent. Each student is saved
// in its own transaction so one failure does not void the whole batch;
// failures come back aggregated in a BatchError.
func (svc *service) RecordRoster(ctx context.Context, sessionID int, statuses map[int]Status) error {
	sess, err := svc.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	roster, err := svc.repo.RosterByClassGroup(ctx, sess.ClassGroupID)
	if err != nil {
		return err
	}

	var failures []BatchFailure
	for _, member := range roster {
		status, ok := statuses[member.StudentID]
		if !ok {
			status = StatusAbsent
		}
		if _, err := svc.RecordStatus(ctx, member.StudentID, sessionID, status); err != nil {
			failures = append(failures, BatchFailure{StudentID: member.StudentID, Error: err.Error()})
		}
	}
	if len(failures) > 0 {
		return &BatchError{Failures: failures}
	}
	return nil
}

// Report aggregates the student's records against every session of their
// current class group. Sessions held before the student joined the group
// still count toward TotalSessions; they land in no status bucket.
func (svc *service) Report(ctx context.Context, studentID int) (Report, error) {
	total, err := svc.repo.CountSessionsForStudent(ctx, studentID)
	if err != nil {
		return Report{}, err
	}
	counts, err := svc.repo.CountStatuses(ctx, studentID)
	if err != nil {
		return Report{}, err
	}

	rpt := Report{
		TotalSessions: total,
		Present:       counts.Present,
		Absent:        counts.Absent,
		Excused:       counts.Excused,
		ValidSessions: total - counts.Excused,
	}
	if rpt.ValidSessions > 0 {
		rpt.PresenceRatio = float64(rpt.Present) / float64(rpt.ValidSessions) * 100
	} else {
		// zero obligated sessions means zero risk
		rpt.PresenceRatio = 100
	}
	return rpt, nil
}

// RankRoster reports on every member of the class group, riskiest first.
// The sort is stable over the roster's student-id ordering so equal ratios
// keep a deterministic order.
func (svc *service) RankRoster(ctx context.Context, classGroupID int) ([]RankedMember, error) {
	if _, err := svc.cgRepo.GetClassGroupByID(ctx, classGroupID); err != nil {
		return nil, err
	}
	roster, err := svc.repo.RosterByClassGroup(ctx, classGroupID)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedMember, 0, len(roster))
	for _, member := range roster {
		rpt, err := svc.Report(ctx, member.StudentID)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedMember{Student: member, Report: rpt})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Report.PresenceRatio < ranked[j].Report.PresenceRatio
	})
	return ranked, nil
}

// NotifyAtRisk emails every member of the class group whose presence ratio
// is below the configured threshold, and returns them riskiest first.
func (svc *service) NotifyAtRisk(ctx context.Context, classGroupID int) ([]RankedMember, error) {
	cg, err := svc.cgRepo.GetClassGroupByID(ctx, classGroupID)
	if err != nil {
		return nil, err
	}
	ranked, err := svc.RankRoster(ctx, classGroupID)
	if err != nil {
		return nil, err
	}

	var atRisk []RankedMember
	for _, member := range ranked {
		if member.Report.PresenceRatio >= svc.riskThreshold {
			break // ranked ascending, the rest are fine
		}
		atRisk = append(atRisk, member)
		if member.Student.Email == "" {
			continue
		}
		svc.sendMail(&core.EmailMessage{
			To:           []mail.Address{{Name: member.Student.Name, Address: member.Student.Email}},
			Subject:      "Attendance alert",
			TemplateName: "attendance-alert",
			TemplateData: struct {
				Student    RosterMember
				ClassGroup classgroup.ClassGroup
				Report     Report
				Threshold  float64
			}{member.Student, cg, member.Report, svc.riskThreshold},
		})
	}
	return atRisk, nil
}

func (svc *service) sendMail(msg *core.EmailMessage) {
	if svc.sendMailSync {
		svc.mailSvc.SendMessages(msg)
	} else {
		go svc.mailSvc.SendMessages(msg)
	}
}
