package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
)

var (
	errMissingToken    = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken    = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound    = echo.NewHTTPError(http.StatusNotFound, "not found")
)

func fieldMap(flds []core.FieldError) map[string]string {
	m := make(map[string]string, len(flds))
	for _, f := range flds {
		m[f.Field] = f.Error
	}
	return m
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = fieldMap(core.TranslateErrors(origErr, translator))
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Fields != nil {
				message = fieldMap(origErr.Fields)
			} else {
				message = origErr.Error()
			}
		case *user.AuthError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			if core.IsNotFound(err) {
				code = errHttpNotFound.Code
				message = errHttpNotFound.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(code)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), getContextSession(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
