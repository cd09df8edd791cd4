package validator

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired   = "is required"
	ErrMinLength  = "must be at least %s characters long"
	ErrMaxLength  = "must be at most %s characters long"
	ErrMinItems   = "must contain at least %s items"
	ErrMaxItems   = "must contain at most %s items"
	ErrMinValue   = "must be at least %s"
	ErrMaxValue   = "must be at most %s"
	ErrDuplicates = "must not contain duplicates"
	ErrOneOf      = "must be one of: %s"
	ErrInvalid    = "is invalid"
)

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMinLength, err.Param())
		}
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf(ErrMinItems, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf(ErrMaxItems, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "unique":
		return ErrDuplicates
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	default:
		return ErrInvalid
	}
}
