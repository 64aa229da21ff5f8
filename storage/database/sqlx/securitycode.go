package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

type securityCodeRepository struct {
	db *sqlx.DB
}

var _ user.SecurityCodeRepository = (*securityCodeRepository)(nil) // interface compliance check

func NewSecurityCodeRepository(db *sqlx.DB) user.SecurityCodeRepository {
	return &securityCodeRepository{db: db}
}

func (repo *securityCodeRepository) CountSecurityCodes(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM security_codes"); err != nil {
		return 0, errors.Wrap(err, "counting security codes")
	}
	return count, nil
}

// CreateSecurityCodes inserts codes in a single transaction, skipping the ones already stored.
func (repo *securityCodeRepository) CreateSecurityCodes(ctx context.Context, codes ...user.SecurityCode) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for _, sc := range codes {
		if sc.ID == "" {
			sc.ID = uuid.New().String()
		}
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO security_codes (id, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING",
			sc.ID, sc.Code,
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "inserting security code")
		}
	}
	return errors.Wrap(tx.Commit(), "committing security codes")
}

func (repo *securityCodeRepository) SecurityCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM security_codes WHERE code = $1)", code)
	if err != nil {
		return false, errors.Wrap(err, "checking security code")
	}
	return exists, nil
}
