package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
)

type moduleRepository struct {
	db *moduleTable
}

var _ module.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *DB) module.Repository {
	return &moduleRepository{db: db.module}
}

// clone detaches the membership slices from the stored record.
func clone(mod module.Module) module.Module {
	mod.AssignedTo = copyStrings(mod.AssignedTo)
	mod.CompletedBy = copyStrings(mod.CompletedBy)
	return mod
}

func (repo *moduleRepository) CreateModule(_ context.Context, mod module.Module) (module.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if mod.ID == "" {
		mod.ID = uuid.New().String()
	}
	stored := clone(mod)
	repo.db.table[mod.ID] = &stored
	return clone(stored), nil
}

func (repo *moduleRepository) GetModuleByID(_ context.Context, id string) (module.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.table[id]; ok {
		return clone(*mod), nil
	}
	return module.Module{}, module.ErrNotFound
}

func (repo *moduleRepository) QueryModules(_ context.Context, filter module.QueryFilter, ordering ...core.DBOrdering) ([]module.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]module.Module, 0, len(repo.db.table))
	for _, mod := range repo.db.table {
		if filter.AssignedTo != "" && !core.ContainsString(mod.AssignedTo, filter.AssignedTo) {
			continue
		}
		mods = append(mods, clone(*mod))
	}

	ordering = core.AllowedOrderings(ordering, "title", "created_at", "updated_at")
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	sort.SliceStable(mods, func(i, j int) bool {
		for _, ord := range ordering {
			var cmp int
			switch ord.Field {
			case "title":
				cmp = strings.Compare(mods[i].Title, mods[j].Title)
			case "created_at":
				cmp = mods[i].CreatedAt.Compare(mods[j].CreatedAt)
			case "updated_at":
				cmp = mods[i].UpdatedAt.Compare(mods[j].UpdatedAt)
			}
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return mods, nil
}

func (repo *moduleRepository) UpdateModuleMembers(_ context.Context, mod module.Module) (module.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[mod.ID]
	if !ok {
		return module.Module{}, module.ErrNotFound
	}
	stored.AssignedTo = copyStrings(mod.AssignedTo)
	stored.CompletedBy = copyStrings(mod.CompletedBy)
	stored.UpdatedAt = mod.UpdatedAt
	return clone(*stored), nil
}

func (repo *moduleRepository) DeleteModule(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return module.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
