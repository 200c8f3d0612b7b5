package repositories

import (
	"errors"
	"fmt"

	"foodgram/internal/apperrors"

	"gorm.io/gorm"
)

// translateError maps gorm errors onto the application error vocabulary and
// wraps everything else with the failed operation.
func translateError(err error, op, subject string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("%s not found", subject)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("%s already exists", subject)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NotFound("%s references a missing entity", subject)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func paginate(q *gorm.DB, page Page) *gorm.DB {
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	return q
}
