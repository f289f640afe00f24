package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/calendar"
	"github.com/trezcool/lophoc/core/classroom"
)

type SystemInfo struct {
	AppName    string `json:"app_name"`
	Build      string `json:"build"`
	Env        string `json:"env"`
	Backend    string `json:"backend"`
	BackendURL string `json:"backend_url"`
	Timezone   string `json:"timezone"`
	FirstWeek  int    `json:"first_week"`
	LastWeek   int    `json:"last_week"`

	Vocabulary classroom.Vocabulary `json:"vocabulary"`
}

func registerSystemAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config) {
	info := SystemInfo{
		AppName:    conf.AppName,
		Build:      conf.Build,
		Env:        conf.Env,
		Backend:    conf.Backend,
		BackendURL: conf.BackendURL(),
		Timezone:   conf.Location().String(),
		FirstWeek:  calendar.FirstWeek,
		LastWeek:   calendar.LastWeek,
		Vocabulary: classroom.FormVocabulary(),
	}
	g.GET("/system", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, info)
	}, jwt, staffMiddleware())
}
