package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/classroom"
)

type classroomApi struct {
	svc      classroom.ServiceInterface
	validate *validator.Validate
}

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.ServiceInterface, validate *validator.Validate) {
	api := classroomApi{svc: svc, validate: validate}

	ag := g.Group("", jwt)
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/students", api.students)
	ag.GET("/students/:id", api.studentDetail)
	ag.GET("/plans", api.plans)
	ag.GET("/notifications", api.notifications)

	// staff endpoints
	ag.POST("/scores", api.saveScore, staffMiddleware())
	ag.POST("/assessments", api.saveAssessment, staffMiddleware())
	ag.POST("/stars", api.saveStar, staffMiddleware())
	ag.POST("/plans", api.savePlan, staffMiddleware())
	ag.POST("/notifications", api.saveNotification, staffMiddleware())
}

type AssessmentRequest struct {
	StudentID  string  `json:"student_id" validate:"required,notblank"`
	Kind       string  `json:"kind" validate:"required"`
	Category   string  `json:"category" validate:"required,notblank"`
	Score      float64 `json:"score"`
	Notes      string  `json:"notes"`
	AssessedBy string  `json:"assessed_by"`
}

func orActor(name string, ctx echo.Context) string {
	if core.CleanString(name) != "" {
		return name
	}
	return getContextSession(ctx).User.Name
}

func (api *classroomApi) dashboard(ctx echo.Context) error {
	data, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	return ctx.JSON(http.StatusOK, data)
}

// students only ever see their own roster entry.
func (api *classroomApi) students(ctx echo.Context) error {
	var filter classroom.StudentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}

	students, err := api.svc.Students(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}

	if usr := getContextSession(ctx).User; usr.IsStudent() {
		own := make([]classroom.Student, 0, 1)
		for _, s := range students {
			if s.ID == usr.ID {
				own = append(own, s)
			}
		}
		students = own
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *classroomApi) studentDetail(ctx echo.Context) error {
	id := ctx.Param("id")
	if usr := getContextSession(ctx).User; usr.IsStudent() && usr.ID != id {
		return errHttpNotFound
	}

	detail, err := api.svc.StudentDetail(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *classroomApi) saveScore(ctx echo.Context) error {
	var data classroom.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	data.GradedBy = orActor(data.GradedBy, ctx)

	if err := api.svc.SaveScore(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving score")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *classroomApi) saveAssessment(ctx echo.Context) error {
	var data AssessmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	kind, err := classroom.ParseAssessment(data.Kind, data.Category)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "kind", Error: "kind must be one of [quality competency]"})
	}

	na := classroom.NewAssessment{
		StudentID:  data.StudentID,
		Kind:       kind,
		Score:      data.Score,
		Notes:      data.Notes,
		AssessedBy: orActor(data.AssessedBy, ctx),
	}
	if err = api.svc.SaveAssessment(ctx.Request().Context(), na); err != nil {
		return errors.Wrap(err, "saving assessment")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *classroomApi) saveStar(ctx echo.Context) error {
	var data classroom.NewStar
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStar")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	data.AwardedBy = orActor(data.AwardedBy, ctx)

	if err := api.svc.SaveStar(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving star")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *classroomApi) plans(ctx echo.Context) error {
	var filter classroom.PlanFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to PlanFilter")
	}

	plans, err := api.svc.WeeklyPlans(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing weekly plans")
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *classroomApi) savePlan(ctx echo.Context) error {
	var data classroom.NewWeeklyPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWeeklyPlan")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.SaveWeeklyPlan(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving weekly plan")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *classroomApi) notifications(ctx echo.Context) error {
	notifs, err := api.svc.Notifications(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

// saveNotification always publishes as the session user with the active status.
func (api *classroomApi) saveNotification(ctx echo.Context) error {
	var data classroom.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	data.CreatedBy = getContextSession(ctx).User.Name
	data.Status = classroom.StatusActive

	if err := api.svc.SaveNotification(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving notification")
	}
	return ctx.NoContent(http.StatusCreated)
}
