package core

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the `validate` tags of s and wraps any failure in ErrValidation.
func Validate(ctx context.Context, s any) error {
	if err := validate.StructCtx(ctx, s); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
