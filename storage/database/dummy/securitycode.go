package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

type securityCodeRepository struct {
	db *codeTable
}

var _ user.SecurityCodeRepository = (*securityCodeRepository)(nil) // interface compliance check

func NewSecurityCodeRepository(db *DB) user.SecurityCodeRepository {
	return &securityCodeRepository{db: db.code}
}

func (repo *securityCodeRepository) CountSecurityCodes(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

// CreateSecurityCodes skips the codes already stored.
func (repo *securityCodeRepository) CreateSecurityCodes(_ context.Context, codes ...user.SecurityCode) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing := make(map[string]struct{}, len(repo.db.table))
	for _, sc := range repo.db.table {
		existing[sc.Code] = struct{}{}
	}
	for i := range codes {
		sc := codes[i]
		if _, ok := existing[sc.Code]; ok {
			continue
		}
		existing[sc.Code] = struct{}{}
		if sc.ID == "" {
			sc.ID = uuid.New().String()
		}
		repo.db.table[sc.ID] = &sc
	}
	return nil
}

func (repo *securityCodeRepository) SecurityCodeExists(_ context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sc := range repo.db.table {
		if sc.Code == code {
			return true, nil
		}
	}
	return false, nil
}
