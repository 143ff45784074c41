package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	errors "github.com/frahmantamala/inventory-management/internal"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names so details match the request body
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates the `validate` tags of v and returns a validation
// AppError listing every failing field, or nil.
func Struct(v interface{}) *errors.AppError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	details := make([]errors.ValidationError, 0, len(ve))
	for _, fe := range ve {
		details = append(details, errors.ValidationError{
			Field:   fe.Field(),
			Message: fieldError(fe),
			Code:    string(errors.ErrCodeValidationFailed),
		})
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: details})
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return field + " must be numeric"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
