package serverutils

import (
	"fmt"
	"strings"

	"ai-journaling-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into a
// ValidationError so the error middleware renders them as 422.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if ok := AsValidationErrors(err, &errs); ok {
			details := make([]string, 0, len(errs))
			for _, fe := range errs {
				details = append(details, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return apperrors.NewValidationError(strings.Join(details, "; "))
		}
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func AsValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}
