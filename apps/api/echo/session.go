package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/attendance"
)

type sessionApi struct {
	svc attendance.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service) {
	api := sessionApi{svc: svc}

	sg := g.Group("/sessions", jwt, staffMiddleware())
	sg.PUT("/:sessionID/attendance/:studentID", api.recordStatus)
	sg.POST("/:sessionID/roll-call", api.rollCall)
}

type (
	RecordStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}

	// RollCallRequest maps student IDs to their status; roster members left
	// out are marked absent.
	RollCallRequest struct {
		Statuses map[int]string `json:"statuses"`
	}
)

func (api *sessionApi) recordStatus(ctx echo.Context) error {
	sessionID, err := intParam(ctx, "sessionID")
	if err != nil {
		return errHttpNotFound
	}
	studentID, err := intParam(ctx, "studentID")
	if err != nil {
		return errHttpNotFound
	}

	var data RecordStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordStatusRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}
	status, err := attendance.ParseStatus(data.Status)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}

	rec, err := api.svc.RecordStatus(ctx.Request().Context(), studentID, sessionID, status)
	if err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording attendance status")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *sessionApi) rollCall(ctx echo.Context) error {
	sessionID, err := intParam(ctx, "sessionID")
	if err != nil {
		return errHttpNotFound
	}

	var data RollCallRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RollCallRequest")
	}
	statuses := make(map[int]attendance.Status, len(data.Statuses))
	for studentID, raw := range data.Statuses {
		status, err := attendance.ParseStatus(raw)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "statuses", Error: err.Error()})
		}
		statuses[studentID] = status
	}

	if err := api.svc.RecordRoster(ctx.Request().Context(), sessionID, statuses); err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		// BatchError maps to 207 in the error handler
		return err
	}
	return ctx.NoContent(http.StatusOK)
}
