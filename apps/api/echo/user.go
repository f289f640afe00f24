package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
)

type userApi struct {
	svc  user.ServiceInterface
	conf *core.Config
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.ServiceInterface, conf *core.Config) {
	api := userApi{svc: svc, conf: conf}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/login` once sessions carry a client fingerprint
	ag.POST("/login", api.login)

	// authed endpoints
	ag.POST("/logout", api.logout, jwt)
	ag.GET("/me", api.me, jwt)
}

type (
	LoginRequest struct {
		Identifier string `json:"identifier"`
		Credential string `json:"credential"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

// login does not validate the payload: blank inputs are rejected by the authenticator
// with the same message as wrong ones.
func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data.Identifier, data.Credential)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	token, err := GenerateToken(GetSessionClaims(sess, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: sess.User})
}

func (api *userApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(ctx.Request().Context(), getContextSession(ctx).ID); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextSession(ctx).User)
}
