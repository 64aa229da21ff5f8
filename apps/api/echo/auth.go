package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

const (
	bearerScheme   = "Bearer"
	contextUserKey = "user"
)

var (
	errNoToken      = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no token")
	errTokenMissing = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token missing")
	errTokenFailed  = echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token failed")
	errUserNotFound = echo.NewHTTPError(http.StatusUnauthorized, "user not found")
)

// accessGuard authenticates the bearer token of the request and stores the resolved user.User in the context.
// No handler runs unless the token verifies and its subject is a known user.
func accessGuard(tokens TokenVerifier, svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerScheme) {
				return errNoToken
			}
			fields := strings.Fields(header)
			if len(fields) < 2 || fields[0] != bearerScheme {
				return errTokenMissing
			}

			userID, err := tokens.Verify(fields[1])
			if err != nil {
				return errTokenFailed
			}
			usr, err := svc.GetByID(ctx.Request().Context(), userID)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUserNotFound
				}
				return errors.Wrap(err, "finding user by ID")
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

// roleMiddleware lets through the context users holding one of roles.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if hasAnyRole(usr, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func hasAnyRole(usr user.User, roles []user.Role) bool {
	for _, role := range roles {
		switch role {
		case user.RoleInstructor:
			if usr.IsInstructor() {
				return true
			}
		case user.RoleTrainee:
			if usr.IsTrainee() {
				return true
			}
		}
	}
	return false
}
