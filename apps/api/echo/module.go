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

type moduleApi struct {
	svc      module.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerModuleAPI(
	g *echo.Group,
	guard echo.MiddlewareFunc,
	svc module.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := moduleApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}
	instructor := roleMiddleware(user.RoleInstructor)

	mg := g.Group("/modules", guard)
	mg.POST("", api.create, instructor)
	mg.GET("", api.query)
	mg.POST("/assign", api.assign, instructor)
	mg.POST("/unassign", api.unassign, instructor)
	mg.GET("/progress/:traineeId", api.progress)
	mg.DELETE("/:id", api.destroy, instructor)
}

// Handlers

func (api *moduleApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data module.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}

	mod, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *moduleApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	mods, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	views, err := api.populate(ctx, mods)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *moduleApi) assign(ctx echo.Context) error {
	data, err := api.bindAssignment(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.Assign(ctx.Request().Context(), data.ModuleID, data.TraineeID); err != nil {
		return errors.Wrap(err, "assigning module")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Module assigned successfully"})
}

func (api *moduleApi) unassign(ctx echo.Context) error {
	data, err := api.bindAssignment(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.Unassign(ctx.Request().Context(), data.ModuleID, data.TraineeID); err != nil {
		return errors.Wrap(err, "unassigning module")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Unassigned successfully"})
}

// progress is open to instructors and to the trainee themself.
func (api *moduleApi) progress(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	traineeID := ctx.Param("traineeId")
	if !usr.IsInstructor() && usr.ID != traineeID {
		return errHttpForbidden
	}

	prog, err := api.svc.Progress(ctx.Request().Context(), traineeID)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *moduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Module deleted successfully"})
}

func (api *moduleApi) bindAssignment(ctx echo.Context) (module.Assignment, error) {
	var data module.Assignment
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to Assignment")
	}
	data.ModuleID = core.CleanString(data.ModuleID)
	data.TraineeID = core.CleanString(data.TraineeID)
	return data, api.validate.Struct(data)
}

type (
	// UserRef is the reference to a user embedded in a ModuleView.
	UserRef struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	// ModuleView is a module whose member IDs are replaced by user references.
	// Members that no longer exist are left out.
	ModuleView struct {
		module.Module
		AssignedTo  []UserRef `json:"assignedTo"`
		CompletedBy []UserRef `json:"completedBy"`
	}
)

func (api *moduleApi) populate(ctx echo.Context, mods []module.Module) ([]ModuleView, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, mod := range mods {
		for _, id := range mod.AssignedTo {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		// CompletedBy is a subset of AssignedTo
	}

	users, err := api.usrSvc.GetByIDs(ctx.Request().Context(), ids...)
	if err != nil {
		return nil, errors.Wrap(err, "finding module members")
	}
	refs := make(map[string]UserRef, len(users))
	for _, usr := range users {
		refs[usr.ID] = UserRef{ID: usr.ID, Name: usr.Name, Email: usr.Email}
	}
	toRefs := func(ids []string) []UserRef {
		res := make([]UserRef, 0, len(ids))
		for _, id := range ids {
			if ref, ok := refs[id]; ok {
				res = append(res, ref)
			}
		}
		return res
	}

	views := make([]ModuleView, 0, len(mods))
	for _, mod := range mods {
		views = append(views, ModuleView{
			Module:      mod,
			AssignedTo:  toRefs(mod.AssignedTo),
			CompletedBy: toRefs(mod.CompletedBy),
		})
	}
	return views, nil
}
