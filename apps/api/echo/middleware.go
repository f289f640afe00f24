package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/lophoc/core/user"
)

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess := getContextSession(ctx)
			if !sess.IsAuthenticated() {
				return errUnauthenticated
			}
			if sess.User.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware lets teachers and admins through.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.StaffRoles...)
}
