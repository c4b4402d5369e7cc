package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to the bus validation middleware.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags on the dispatched command or query. Field-level
// failures keep the field name so the UI can attach the message to an input.
func (va *Validator) Validate(ctx context.Context, message any) error {
	if message == nil {
		return nil
	}
	err := va.v.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fmt.Errorf("validate: field %s failed on %q: %w", fields[0].Field(), fields[0].Tag(), err)
	}
	return err
}
