package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

var errRoleRequired = echo.NewHTTPError(http.StatusBadRequest, "role is required")

type userApi struct {
	svc      user.Service
	modSvc   module.Service
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	guard echo.MiddlewareFunc,
	svc user.Service,
	modSvc module.Service,
	validate *validator.Validate,
) {
	api := userApi{
		svc:      svc,
		modSvc:   modSvc,
		validate: validate,
	}

	// un-authed endpoints
	// TODO: rate limit `/login` & `/forgot-password`
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/verify-reset-token", api.verifyResetToken)
	ag.POST("/reset-password", api.resetPassword)

	// authed endpoints
	ug := g.Group("/users", guard)
	ug.GET("", api.query, roleMiddleware(user.RoleInstructor))
	ug.GET("/me", api.me)
	ug.POST("/complete", api.complete)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	sess, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, user.ErrNotFound.Error())
		}
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data user.ForgotPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPassword")
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "requesting password reset")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Reset link sent (simulated). Check console."})
}

func (api *userApi) verifyResetToken(ctx echo.Context) error {
	var data ResetTokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetTokenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.CheckResetToken(ctx.Request().Context(), data.Email, data.Token); err != nil {
		return errors.Wrap(err, "checking reset token")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Reset token is valid"})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Password reset successful"})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if filter.Role == "" {
		return errRoleRequired
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr.Public())
}

// complete marks a module as completed by the context user.
func (api *userApi) complete(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data CompleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.modSvc.Complete(ctx.Request().Context(), data.ModuleID, usr.ID); err != nil {
		return errors.Wrap(err, "completing module")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Module marked as completed"})
}

type (
	ResetTokenRequest struct {
		Email string `json:"email" validate:"required"`
		Token string `json:"token" validate:"required"`
	}

	CompleteRequest struct {
		ModuleID string `json:"moduleId" validate:"required"`
	}
)

func (r *ResetTokenRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email)
	r.Token = core.CleanString(r.Token)
	return validate.Struct(r)
}

func (r *CompleteRequest) Validate(validate *validator.Validate) error {
	r.ModuleID = core.CleanString(r.ModuleID)
	return validate.Struct(r)
}
