package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/enrollment"
	"github.com/dmorais/escolar/core/lookup"
	"github.com/dmorais/escolar/core/student"
	"github.com/dmorais/escolar/core/teacher"
	"github.com/dmorais/escolar/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		UserSvc       user.Service
		LookupSvc     lookup.Service
		TeacherSvc    teacher.Service
		StudentSvc    student.Service
		ClassGroupSvc classgroup.Service
		CourseSvc     course.Service
		EnrollmentSvc enrollment.Service
		AttendanceSvc attendance.Service

		Logger core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerLookupAPI(v1, jwt, s.opts.LookupSvc)
	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.EnrollmentSvc, s.opts.AttendanceSvc)
	registerClassGroupAPI(v1, jwt, s.opts.ClassGroupSvc, s.opts.AttendanceSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc)
	registerSessionAPI(v1, jwt, s.opts.AttendanceSvc)
}

// signalShutdown requests a graceful server stop; called by the error
// handler when an unrecoverable error is caught.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		_ = s.Stop(context.Background())
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Escolar API!")
}
