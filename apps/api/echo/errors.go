package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// domainErrorCode returns the response status of the domain sentinel errors.
func domainErrorCode(err error) (int, bool) {
	switch err {
	case user.ErrInvalidInstructorCode:
		return http.StatusForbidden, true
	case user.ErrInvalidCredentials, user.ErrInvalidResetToken, user.ErrWeakPassword:
		return http.StatusBadRequest, true
	case user.ErrIncorrectPassword:
		return http.StatusUnauthorized, true
	case user.ErrNotFound, module.ErrNotFound:
		return http.StatusNotFound, true
	}
	return 0, false
}

// newFieldErrorsBody reports the first field error as the message and all of them under "errors".
func newFieldErrorsBody(flds []core.FieldError) echo.Map {
	msg := http.StatusText(http.StatusBadRequest)
	errs := make(map[string]string, len(flds))
	for i, fErr := range flds {
		if i == 0 {
			msg = fErr.Error
		}
		errs[fErr.Field] = fErr.Error
	}
	return echo.Map{"message": msg, "errors": errs}
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
			flds := make([]core.FieldError, 0, len(origErr))
			for _, vErr := range origErr {
				flds = append(flds, core.FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
			}
			code = http.StatusBadRequest
			message = newFieldErrorsBody(flds)
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				message = newFieldErrorsBody(origErr.Fields)
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if status, ok := domainErrorCode(origErr); ok {
				code = status
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			usr, _ := getContextUser(ctx)
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"message": m}
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
