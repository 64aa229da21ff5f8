package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
)

const moduleColumns = "id, title, description, created_by, assigned_to, completed_by, created_at, updated_at"

type moduleRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description null.String    `db:"description"`
	CreatedBy   null.String    `db:"created_by"`
	AssignedTo  pq.StringArray `db:"assigned_to"`
	CompletedBy pq.StringArray `db:"completed_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r moduleRow) toModule() module.Module {
	return module.Module{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		CreatedBy:   r.CreatedBy.String,
		AssignedTo:  members(r.AssignedTo),
		CompletedBy: members(r.CompletedBy),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// members never returns nil so that empty sets encode as [] and are stored as '{}'.
func members(ids []string) pq.StringArray {
	if ids == nil {
		return pq.StringArray{}
	}
	return ids
}

type moduleRepository struct {
	db *sqlx.DB
}

var _ module.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *sqlx.DB) module.Repository {
	return &moduleRepository{db: db}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	if mod.ID == "" {
		mod.ID = uuid.New().String()
	}
	var row moduleRow
	err := repo.db.GetContext(
		ctx, &row,
		"INSERT INTO modules ("+moduleColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+moduleColumns,
		mod.ID,
		mod.Title,
		null.NewString(mod.Description, mod.Description != ""),
		null.NewString(mod.CreatedBy, mod.CreatedBy != ""),
		members(mod.AssignedTo),
		members(mod.CompletedBy),
		mod.CreatedAt,
		mod.UpdatedAt,
	)
	if err != nil {
		return module.Module{}, errors.Wrap(err, "inserting module")
	}
	return row.toModule(), nil
}

func (repo *moduleRepository) GetModuleByID(ctx context.Context, id string) (module.Module, error) {
	var row moduleRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+moduleColumns+" FROM modules WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return module.Module{}, module.ErrNotFound
		}
		return module.Module{}, errors.Wrap(err, "selecting module")
	}
	return row.toModule(), nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context, filter module.QueryFilter, ordering ...core.DBOrdering) ([]module.Module, error) {
	var args []interface{}
	q := "SELECT " + moduleColumns + " FROM modules"
	if filter.AssignedTo != "" {
		q += " WHERE $1 = ANY(assigned_to)"
		args = append(args, filter.AssignedTo)
	}
	q += orderBy(ordering, "created_at ASC", "title", "created_at", "updated_at")

	var rows []moduleRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		if isInvalidText(err) {
			return []module.Module{}, nil
		}
		return nil, errors.Wrap(err, "selecting modules")
	}
	mods := make([]module.Module, 0, len(rows))
	for _, r := range rows {
		mods = append(mods, r.toModule())
	}
	return mods, nil
}

func (repo *moduleRepository) UpdateModuleMembers(ctx context.Context, mod module.Module) (module.Module, error) {
	var row moduleRow
	err := repo.db.GetContext(
		ctx, &row,
		"UPDATE modules SET assigned_to = $2, completed_by = $3, updated_at = $4 WHERE id = $1 RETURNING "+moduleColumns,
		mod.ID, members(mod.AssignedTo), members(mod.CompletedBy), mod.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return module.Module{}, module.ErrNotFound
		}
		return module.Module{}, errors.Wrap(err, "updating module")
	}
	return row.toModule(), nil
}

func (repo *moduleRepository) DeleteModule(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM modules WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return module.ErrNotFound
		}
		return errors.Wrap(err, "deleting module")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if n == 0 {
		return module.ErrNotFound
	}
	return nil
}
