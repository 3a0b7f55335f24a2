package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/dmorais/escolar/apps/api/echo"
	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/enrollment"
	"github.com/dmorais/escolar/core/lookup"
	"github.com/dmorais/escolar/core/student"
	"github.com/dmorais/escolar/core/teacher"
	"github.com/dmorais/escolar/core/user"
	emailsvc "github.com/dmorais/escolar/services/email"
	logsvc "github.com/dmorais/escolar/services/logger"
	dummydb "github.com/dmorais/escolar/storage/database/dummy"
)

var (
	ddb      *dummydb.DB
	usrRepo  user.Repository
	tchrRepo teacher.Repository
	stdRepo  student.Repository
	cgRepo   classgroup.Repository
	crsRepo  course.Repository
	enrlRepo enrollment.Repository
	attRepo  attendance.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	core.Conf.TestMode = true
	core.Conf.Debug = false

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	ddb = db
	usrRepo = dummydb.NewUserRepository(db)
	tchrRepo = dummydb.NewTeacherRepository(db)
	stdRepo = dummydb.NewStudentRepository(db)
	cgRepo = dummydb.NewClassGroupRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	enrlRepo = dummydb.NewEnrollmentRepository(db)
	attRepo = dummydb.NewAttendanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        user.NewService(nil, usrRepo, mailSvc),
			LookupSvc:      lookup.NewService(dummydb.NewLookupRepository(db)),
			TeacherSvc:     teacher.NewService(tchrRepo),
			StudentSvc:     student.NewService(stdRepo),
			ClassGroupSvc:  classgroup.NewService(cgRepo),
			CourseSvc:      course.NewService(crsRepo, tchrRepo),
			EnrollmentSvc:  enrollment.NewService(enrlRepo, stdRepo, crsRepo),
			AttendanceSvc:  attendance.NewService(nil, attRepo, cgRepo, mailSvc),
			Logger:         logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
