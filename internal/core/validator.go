package core

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"mcass/internal/types"
)

// Validator wraps go-playground/validator and registers domain-specific rules
// used to validate request parameters before they reach domain services.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator builds the request validator with the dashboard's custom tags
// registered.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	// basincode matches the snow model's file naming convention: ASCII
	// letters, digits and underscores (KGZ01, AMU_DARYA).
	// RegisterValidation only errors on an empty tag name.
	_ = v.RegisterValidation("basincode", isBasinCode)

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates a tagged struct and returns the raw validator
// error, or nil. Callers translate the error into their own AppError codes.
func (v *Validator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

// BasinCode validates a basin code path parameter. Codes are limited to the
// character set used by the export file names so the value can be safely
// joined into file paths without traversal risk.
func (v *Validator) BasinCode(code string) error {
	if err := v.validate.Var(code, "required,min=2,max=32,basincode"); err != nil {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidBasinCode,
			"basin code must be 2-32 characters of letters, digits and underscores",
			err,
			map[string]any{"basin_code": code},
		)
	}
	return nil
}

// isBasinCode reports whether the field consists solely of ASCII letters,
// digits and underscores.
func isBasinCode(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
