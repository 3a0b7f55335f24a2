package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/user"
	emailsvc "github.com/dmorais/escolar/services/email"
	testutil "github.com/dmorais/escolar/tests"
)

func date(day int) time.Time {
	return time.Date(2021, time.March, day, 0, 0, 0, 0, time.UTC)
}

func Test_sessionApi_recordAndReport(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	cg := testutil.CreateClassGroup(t, cgRepo, "Group A", core.ShiftMorning)
	std1 := testutil.CreateStudent(t, stdRepo, "Alice", cg.ID)
	std2 := testutil.CreateStudent(t, stdRepo, "Bruno", cg.ID)
	sess := testutil.CreateSession(t, attRepo, cg.ID, date(1))

	statusPath := func(sessionID, studentID int) string {
		return fmt.Sprintf("/v1/sessions/%d/attendance/%d", sessionID, studentID)
	}

	t.Run("record status", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"status": "present"})
		req, rec := newAuthRequest(http.MethodPut, statusPath(sess.ID, std1.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var saved attendance.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
		require.Equal(t, attendance.StatusPresent, saved.Status)
	})

	t.Run("record again overwrites", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"status": "excused"})
		req, rec := newAuthRequest(http.MethodPut, statusPath(sess.ID, std1.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var saved attendance.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
		require.Equal(t, attendance.StatusExcused, saved.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"status": "sleeping"})
		req, rec := newAuthRequest(http.MethodPut, statusPath(sess.ID, std1.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("unknown session", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"status": "present"})
		req, rec := newAuthRequest(http.MethodPut, statusPath(999, std1.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("roll call defaults missing students to absent", func(t *testing.T) {
		sess2 := testutil.CreateSession(t, attRepo, cg.ID, date(8))

		body := marchallObj(t, map[string]interface{}{
			"statuses": map[string]string{fmt.Sprint(std1.ID): "present"},
		})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/sessions/%d/roll-call", sess2.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec1, err := attRepo.GetRecord(req.Context(), std1.ID, sess2.ID)
		require.NoError(t, err)
		require.Equal(t, attendance.StatusPresent, rec1.Status)

		rec2, err := attRepo.GetRecord(req.Context(), std2.ID, sess2.ID)
		require.NoError(t, err)
		require.Equal(t, attendance.StatusAbsent, rec2.Status)
	})

	t.Run("student report", func(t *testing.T) {
		// std1: session 1 excused, session 2 present -> total 2, valid 1, ratio 100
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/report", std1.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rpt attendance.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpt))
		require.Equal(t, attendance.Report{
			TotalSessions: 2,
			Present:       1,
			Absent:        0,
			Excused:       1,
			ValidSessions: 1,
			PresenceRatio: 100,
		}, rpt)
	})

	t.Run("report counts sessions held before the student joined", func(t *testing.T) {
		// joins after two sessions were already held; attends the third
		late := testutil.CreateStudent(t, stdRepo, "Late", cg.ID)
		sess3 := testutil.CreateSession(t, attRepo, cg.ID, date(15))
		body := marchallObj(t, map[string]string{"status": "present"})
		req, rec := newAuthRequest(http.MethodPut, statusPath(sess3.ID, late.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/report", late.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rpt attendance.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpt))
		require.Equal(t, 3, rpt.TotalSessions)
		require.Equal(t, 3, rpt.ValidSessions)
		require.InDelta(t, 33.33, rpt.PresenceRatio, 0.01)
	})

	t.Run("unknown student report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/999/report", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_classGroupApi_riskRanking(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	cg := testutil.CreateClassGroup(t, cgRepo, "Group B", core.ShiftAfternoon)
	good := testutil.CreateStudent(t, stdRepo, "Good", cg.ID)
	risky := testutil.CreateStudent(t, stdRepo, "Risky", cg.ID)

	// two sessions; good attends both, risky misses both
	for day := 1; day <= 2; day++ {
		sess := testutil.CreateSession(t, attRepo, cg.ID, date(day))
		body := marchallObj(t, map[string]interface{}{
			"statuses": map[string]string{fmt.Sprint(good.ID): "present"},
		})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/sessions/%d/roll-call", sess.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	t.Run("riskiest first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/class-groups/%d/risk-ranking", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var ranked []attendance.RankedMember
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
		require.Len(t, ranked, 2)
		require.Equal(t, risky.ID, ranked[0].Student.StudentID)
		require.Equal(t, float64(0), ranked[0].Report.PresenceRatio)
		require.Equal(t, good.ID, ranked[1].Student.StudentID)
		require.Equal(t, float64(100), ranked[1].Report.PresenceRatio)
	})

	t.Run("notify at risk mails the risky student", func(t *testing.T) {
		emailsvc.SentMessages = emailsvc.SentMessages[:0]

		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/class-groups/%d/notify-at-risk", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var atRisk []attendance.RankedMember
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atRisk))
		require.Len(t, atRisk, 1)
		require.Equal(t, risky.ID, atRisk[0].Student.StudentID)

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		require.Equal(t, "attendance-alert", msg.TemplateName)
		require.Equal(t, risky.Email, msg.To[0].Address)
	})

	t.Run("unknown class group", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/class-groups/999/risk-ranking", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_classGroupApi_sessions(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	cg := testutil.CreateClassGroup(t, cgRepo, "Group C", core.ShiftEvening)
	testutil.CreateSession(t, attRepo, cg.ID, date(1))
	testutil.CreateSession(t, attRepo, cg.ID, date(15))
	testutil.CreateSession(t, attRepo, cg.ID, date(8))

	t.Run("most recent first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/class-groups/%d/sessions", cg.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sessions []attendance.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
		require.Len(t, sessions, 3)
		require.Equal(t, date(15), sessions[0].Date)
		require.Equal(t, date(8), sessions[1].Date)
		require.Equal(t, date(1), sessions[2].Date)
	})

	t.Run("create session defaults to today", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"topic": "fractions"})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/class-groups/%d/sessions", cg.ID), token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sess attendance.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
		require.Equal(t, core.Today(), sess.Date)
		require.Equal(t, "fractions", sess.Topic)
	})

	t.Run("create session for unknown group", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"topic": "fractions"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/class-groups/999/sessions", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_studentApi_enrollments(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	std := testutil.CreateStudent(t, stdRepo, "Alice")
	tchr := testutil.CreateTeacher(t, tchrRepo, "Prof")
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", tchr.ID)

	enrollPath := fmt.Sprintf("/v1/students/%d/courses/%d", std.ID, crs.ID)

	t.Run("enroll", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("enroll twice conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("list courses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/courses", std.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var courses []course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		require.Len(t, courses, 1)
		require.Equal(t, crs.ID, courses[0].ID)
	})

	t.Run("unenroll", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, enrollPath, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("unenroll again is a no-op", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, enrollPath, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/students/%d/courses/999", std.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}
