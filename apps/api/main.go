package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/dmorais/escolar/apps/api/echo"
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
	"github.com/dmorais/escolar/storage/database"
	sqlxrepos "github.com/dmorais/escolar/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	if core.Conf.Debug {
		if err := database.CreateIfNotExist(core.Conf); err != nil {
			logger.Fatal("creating database", err)
		}
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db); err != nil {
		logger.Fatal("migrating database", err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	tchrRepo := sqlxrepos.NewTeacherRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	cgRepo := sqlxrepos.NewClassGroupRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	enrlRepo := sqlxrepos.NewEnrollmentRepository(db)
	attRepo := sqlxrepos.NewAttendanceRepository(db)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.Server.Addr(),
			UserSvc:       user.NewService(db, usrRepo, mailSvc),
			LookupSvc:     lookup.NewService(sqlxrepos.NewLookupRepository(db)),
			TeacherSvc:    teacher.NewService(tchrRepo),
			StudentSvc:    student.NewService(stdRepo),
			ClassGroupSvc: classgroup.NewService(cgRepo),
			CourseSvc:     course.NewService(crsRepo, tchrRepo),
			EnrollmentSvc: enrollment.NewService(enrlRepo, stdRepo, crsRepo),
			AttendanceSvc: attendance.NewService(db, attRepo, cgRepo, mailSvc),
			Logger:        logger,
		},
	)

	// graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Error("stopping server", err)
		}
	}()

	app.Start()
}
