package validator

import (
	"fmt"
	"strings"

	val "github.com/go-playground/validator/v10"

	"suitesync/shared/failure"
)

var validate = val.New(val.WithRequiredStructEnabled())

// Struct validates struct fields against their validate tags and returns a
// bad-request failure listing every offending field.
func Struct(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(val.ValidationErrors)
	if !ok {
		return failure.BadRequest(err) //nolint:wrapcheck
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldMessage(fieldError))
	}

	return failure.BadRequestFromString(strings.Join(messages, "; ")) //nolint:wrapcheck
}

func fieldMessage(fieldError val.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fieldError.Field(), fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldError.Field(), fieldError.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fieldError.Field(), fieldError.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fieldError.Field(), fieldError.Tag())
	}
}
