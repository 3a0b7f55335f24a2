package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core/attendance"
	"github.com/dmorais/escolar/core/classgroup"
	"github.com/dmorais/escolar/core/course"
)

type classGroupApi struct {
	svc    classgroup.Service
	attSvc attendance.Service
}

func registerClassGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classgroup.Service, attSvc attendance.Service) {
	api := classGroupApi{svc: svc, attSvc: attSvc}

	cg := g.Group("/class-groups", jwt, staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/detail", api.detail)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)

	// sessions of the group
	cg.GET("/:id/sessions", api.sessions)
	cg.POST("/:id/sessions", api.createSession)

	// risk reporting
	cg.GET("/:id/risk-ranking", api.rankRoster)
	cg.POST("/:id/notify-at-risk", api.notifyAtRisk)
}

func (api *classGroupApi) create(ctx echo.Context) error {
	var data classgroup.NewClassGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassGroup")
	}
	cg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class group")
	}
	return ctx.JSON(http.StatusCreated, cg)
}

func (api *classGroupApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	groups, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("search"), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying class groups")
	}
	if groups == nil {
		groups = []classgroup.ClassGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *classGroupApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	cg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class group by ID")
	}
	return ctx.JSON(http.StatusOK, cg)
}

// ClassGroupDetail is the group page payload: the group itself, its roster
// with each member's attendance report, and the courses linked to it.
type ClassGroupDetail struct {
	Group   classgroup.ClassGroup     `json:"group"`
	Roster  []attendance.RankedMember `json:"roster"`
	Courses []course.Course           `json:"courses"`
}

func (api *classGroupApi) detail(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	cg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class group by ID")
	}

	roster, err := api.attSvc.RankRoster(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "reporting on roster")
	}
	if roster == nil {
		roster = []attendance.RankedMember{}
	}
	// riskiest-first on request, roster order otherwise
	if ctx.QueryParam(orderingParam) != "risk" {
		sort.Slice(roster, func(i, j int) bool {
			return roster[i].Student.StudentID < roster[j].Student.StudentID
		})
	}

	courses, err := api.svc.Courses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying class group courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}

	return ctx.JSON(http.StatusOK, ClassGroupDetail{Group: cg, Roster: roster, Courses: courses})
}

func (api *classGroupApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	var data classgroup.UpdateClassGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassGroup")
	}
	cg, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating class group")
	}
	return ctx.JSON(http.StatusOK, cg)
}

func (api *classGroupApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting class group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classGroupApi) sessions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	sessions, err := api.attSvc.Sessions(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *classGroupApi) createSession(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	sess, err := api.attSvc.CreateSession(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *classGroupApi) rankRoster(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	ranked, err := api.attSvc.RankRoster(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "ranking roster")
	}
	if ranked == nil {
		ranked = []attendance.RankedMember{}
	}
	return ctx.JSON(http.StatusOK, ranked)
}

func (api *classGroupApi) notifyAtRisk(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}
	atRisk, err := api.attSvc.NotifyAtRisk(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == classgroup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "notifying at-risk students")
	}
	if atRisk == nil {
		atRisk = []attendance.RankedMember{}
	}
	return ctx.JSON(http.StatusOK, atRisk)
}
