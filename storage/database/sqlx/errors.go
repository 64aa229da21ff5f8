package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

const (
	uniqueViolation = "23505"
	invalidText     = "22P02" // e.g. malformed uuid
)

func pqErrorCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pqErrorCode(err) == uniqueViolation }
func isInvalidText(err error) bool     { return pqErrorCode(err) == invalidText }

// orderBy renders an ORDER BY clause from the allowed orderings, falling back to def.
func orderBy(ordering []core.DBOrdering, def string, allowed ...string) string {
	ordering = core.AllowedOrderings(ordering, allowed...)
	if len(ordering) == 0 {
		return " ORDER BY " + def
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
