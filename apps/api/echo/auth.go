package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
	"github.com/trezcool/lophoc/core/user"
)

const (
	contextSessionKey = "session"
	bearerPrefix      = "Bearer "
)

// Claims represents the authorization claims transmitted via a JWT.
// The token ID is the session ID: a token is only valid while its session exists.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func GetSessionClaims(sess user.Session, conf *core.Config) *Claims {
	now := core.NowFunc()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    conf.AppName,
			Subject:   sess.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.JWTExpirationDelta)),
		},
		Name:  sess.User.Name,
		Email: sess.User.Email,
		Role:  sess.User.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(conf.SecretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return core.NowFunc() }),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// jwtMiddleware authenticates the request and stores its user.Session in the context.
func jwtMiddleware(conf *core.Config, svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, bearerPrefix) || len(auth) == len(bearerPrefix) {
				return errMissingToken
			}

			claims, err := parseToken(auth[len(bearerPrefix):], conf)
			if err != nil {
				return errInvalidToken.WithInternal(err)
			}

			sess, err := svc.GetSession(ctx.Request().Context(), claims.ID)
			if err != nil {
				if core.IsNotFound(err) {
					return errUnauthenticated
				}
				return errors.Wrap(err, "getting session")
			}
			if !sess.IsAuthenticated() || sess.User.ID != claims.Subject {
				return errUnauthenticated
			}

			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

// getContextSession returns the zero (unauthenticated) Session outside of authed routes.
func getContextSession(ctx echo.Context) user.Session {
	sess, _ := ctx.Get(contextSessionKey).(user.Session)
	return sess
}
