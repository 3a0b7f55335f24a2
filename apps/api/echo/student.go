package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/course"
	"github.com/dmorais/escolar/core/enrollment"
	"github.com/dmorais/escolar/core/student"
)

type studentApi struct {
	svc     student.Service
	enrlSvc enrollment.Service
	attSvc  attendance.Service
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.Service,
	enrlSvc enrollment.Service,
	attSvc attendance.Service,
) {
	api := studentApi{svc: svc, enrlSvc: enrlSvc, attSvc: attSvc}

	sg := g.Group("/students", jwt, staffMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)

	// attendance report
	sg.GET("/:id/report", api.report)

	// course enrollments
	sg.GET("/:id/courses", api.courses)
	sg.POST("/:id/courses/:courseID", api.enroll)
	sg.DELETE("/:id/courses/:courseID", api.unenroll)
}

// bindStudentFilter reads the listing filters off the query string.
func bindStudentFilter(ctx echo.Context) *student.QueryFilter {
	filter := &student.QueryFilter{Search: ctx.QueryParam("search")}
	if raw := ctx.QueryParam("class_group_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.ClassGroupID = null.IntFrom(id)
		}
	}
	if raw := ctx.QueryParam("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	return filter
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), bindStudentFilter(ctx), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	std, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) report(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	if _, err := api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	rpt, err := api.attSvc.Report(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *studentApi) courses(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	courses, err := api.enrlSvc.Courses(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying student courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) enroll(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	courseID, err := intParam(ctx, "courseID")
	if err != nil {
		return errHttpNotFound
	}
	if err := api.enrlSvc.Enroll(ctx.Request().Context(), id, courseID); err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound, course.ErrNotFound:
			return errHttpNotFound
		case enrollment.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *studentApi) unenroll(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	courseID, err := intParam(ctx, "courseID")
	if err != nil {
		return errHttpNotFound
	}
	if _, err := api.enrlSvc.Unenroll(ctx.Request().Context(), id, courseID); err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound, course.ErrNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
