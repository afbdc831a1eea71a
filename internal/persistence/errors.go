package persistence

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"manestream/internal/core"
)

const pgUniqueViolation = "23505"

// Classify maps store errors onto the core error kinds. Unknown errors are returned
// as-is.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", core.ErrConflict, err)
	default:
		return err
	}
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
