package module

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

var (
	// errors
	ErrNotFound         = errors.New("module not found")
	ErrInvalidTraineeID = errors.New("invalid trainee id")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		QueryModules(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Module, error)
		// UpdateModuleMembers overwrites the AssignedTo and CompletedBy sets of the stored module.
		UpdateModuleMembers(ctx context.Context, mod Module) (Module, error)
		DeleteModule(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, creatorID string, nm NewModule) (Module, error)
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Module, error)
		GetByID(ctx context.Context, id string) (Module, error)
		Assign(ctx context.Context, moduleID, traineeID string) (Module, error)
		Complete(ctx context.Context, moduleID, traineeID string) (Module, error)
		Unassign(ctx context.Context, moduleID, traineeID string) (Module, error)
		Progress(ctx context.Context, traineeID string) (Progress, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) Service {
	return &service{repo: repo, validate: validate, logger: logger}
}

func (svc *service) Create(ctx context.Context, creatorID string, nm NewModule) (Module, error) {
	nm.Clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Module{}, err
	}

	now := time.Now().UTC()
	mod, err := svc.repo.CreateModule(ctx, Module{
		Title:       nm.Title,
		Description: nm.Description,
		CreatedBy:   creatorID,
		AssignedTo:  []string{},
		CompletedBy: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Module{}, errors.Wrap(err, "creating module")
	}
	svc.logger.Info("module created", map[string]interface{}{"module": mod.ID, "createdBy": creatorID})
	return mod, nil
}

func (svc *service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Module, error) {
	mods, err := svc.repo.QueryModules(ctx, QueryFilter{}, ordering...)
	return mods, errors.Wrap(err, "querying modules")
}

// GetByID returns ErrNotFound for unknown or malformed IDs.
func (svc *service) GetByID(ctx context.Context, id string) (Module, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Module{}, ErrNotFound
	}
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Module{}, ErrNotFound
		}
		return Module{}, errors.Wrap(err, "finding module by ID")
	}
	return mod, nil
}

// transition loads the module, applies fn and writes it back when fn reports a change.
// Concurrent transitions on the same module are last-write-wins.
func (svc *service) transition(ctx context.Context, moduleID string, fn func(*Module) bool) (Module, bool, error) {
	mod, err := svc.GetByID(ctx, moduleID)
	if err != nil {
		return Module{}, false, err
	}
	if !fn(&mod) {
		return mod, false, nil
	}
	mod.UpdatedAt = time.Now().UTC()
	mod, err = svc.repo.UpdateModuleMembers(ctx, mod)
	if err != nil {
		if errors.Cause(err) == ErrNotFound { // deleted meanwhile
			return Module{}, false, ErrNotFound
		}
		return Module{}, false, errors.Wrap(err, "updating module members")
	}
	return mod, true, nil
}

// Assign makes traineeID an assignee of the module. Assigning twice is a no-op.
// The trainee is not checked for existence.
func (svc *service) Assign(ctx context.Context, moduleID, traineeID string) (Module, error) {
	if _, err := uuid.Parse(traineeID); err != nil {
		return Module{}, core.NewFieldValidationError(ErrInvalidTraineeID, "traineeId")
	}
	mod, changed, err := svc.transition(ctx, moduleID, func(m *Module) bool { return m.Assign(traineeID) })
	if changed {
		svc.logger.Info("module assigned", map[string]interface{}{"module": moduleID, "trainee": traineeID})
	}
	return mod, err
}

// Complete marks the module completed by traineeID.
// Completing an unassigned or already completed module is a silent no-op.
func (svc *service) Complete(ctx context.Context, moduleID, traineeID string) (Module, error) {
	mod, changed, err := svc.transition(ctx, moduleID, func(m *Module) bool { return m.Complete(traineeID) })
	if changed {
		svc.logger.Info("module completed", map[string]interface{}{"module": moduleID, "trainee": traineeID})
	}
	return mod, err
}

// Unassign removes traineeID from the module, erasing any completion record.
func (svc *service) Unassign(ctx context.Context, moduleID, traineeID string) (Module, error) {
	mod, changed, err := svc.transition(ctx, moduleID, func(m *Module) bool { return m.Unassign(traineeID) })
	if changed {
		svc.logger.Info("module unassigned", map[string]interface{}{"module": moduleID, "trainee": traineeID})
	}
	return mod, err
}

func (svc *service) Progress(ctx context.Context, traineeID string) (Progress, error) {
	if _, err := uuid.Parse(traineeID); err != nil {
		return NewProgress(traineeID, nil), nil
	}
	mods, err := svc.repo.QueryModules(ctx, QueryFilter{AssignedTo: traineeID})
	if err != nil {
		return Progress{}, errors.Wrap(err, "querying assigned modules")
	}
	return NewProgress(traineeID, mods), nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if _, err := svc.GetByID(ctx, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteModule(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "deleting module")
	}
	svc.logger.Info("module deleted", map[string]interface{}{"module": id})
	return nil
}
