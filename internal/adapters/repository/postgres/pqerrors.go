package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
)

// constraintError reports the violated constraint when err is a pq error
// with the given SQLSTATE.
func constraintError(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != code {
		return "", false
	}
	return pqErr.Constraint, true
}

func isUniqueViolation(err error) bool {
	_, ok := constraintError(err, uniqueViolation)
	return ok
}

// foreignKeyTarget maps a violated foreign key to the error for the missing
// referenced row, or nil when err is not a foreign key violation.
func foreignKeyTarget(err error, targets map[string]error) error {
	constraint, ok := constraintError(err, foreignKeyViolation)
	if !ok {
		return nil
	}
	return targets[constraint]
}
