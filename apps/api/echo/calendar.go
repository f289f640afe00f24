package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
)

type calendarApi struct {
	svc      calendar.ServiceInterface
	validate *validator.Validate
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc calendar.ServiceInterface, validate *validator.Validate) {
	api := calendarApi{svc: svc, validate: validate}

	cg := g.Group("/calendar/weeks", jwt)
	cg.GET("", api.weeks)
	cg.GET("/:week", api.week)
	cg.PUT("/:week", api.setWeek, staffMiddleware())
}

// WeekStartRequest clears the week when StartDate is empty.
type WeekStartRequest struct {
	StartDate string `json:"start_date" validate:"isodate"`
}

func weekParam(ctx echo.Context) (int, error) {
	var week int
	if err := echo.PathParamsBinder(ctx).MustInt("week", &week).BindError(); err != nil {
		msg := "week must be a number"
		return 0, core.NewValidationError(errors.New(msg), core.FieldError{Field: "week", Error: msg})
	}
	return week, nil
}

func (api *calendarApi) weeks(ctx echo.Context) error {
	weeks, err := api.svc.Weeks(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing weeks")
	}
	return ctx.JSON(http.StatusOK, weeks)
}

func (api *calendarApi) week(ctx echo.Context) error {
	week, err := weekParam(ctx)
	if err != nil {
		return err
	}
	rng, err := api.svc.Week(ctx.Request().Context(), week)
	if err != nil {
		return errors.Wrap(err, "getting week")
	}
	return ctx.JSON(http.StatusOK, rng)
}

func (api *calendarApi) setWeek(ctx echo.Context) error {
	week, err := weekParam(ctx)
	if err != nil {
		return err
	}
	var data WeekStartRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WeekStartRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	rng, err := api.svc.SetStart(ctx.Request().Context(), week, data.StartDate)
	if err != nil {
		return errors.Wrap(err, "setting week start")
	}
	return ctx.JSON(http.StatusOK, rng)
}
