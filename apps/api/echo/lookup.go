package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core/lookup"
)

type lookupApi struct {
	svc lookup.Service
}

// registerLookupAPI exposes the reference tables (genders, races,
// disabilities) in one shot for form rendering.
func registerLookupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc lookup.Service) {
	api := lookupApi{svc: svc}
	g.GET("/lookups", api.all, jwt)
}

func (api *lookupApi) all(ctx echo.Context) error {
	tables, err := api.svc.All(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying lookup tables")
	}
	return ctx.JSON(http.StatusOK, tables)
}
