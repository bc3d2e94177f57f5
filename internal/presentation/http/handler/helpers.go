package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/restoflow/websrm-adapter/pkg/apperror"
)

// GetOperator extracts the authenticated operator from the Gin context
func GetOperator(c *gin.Context) string {
	operator, exists := c.Get("operator")
	if !exists {
		return ""
	}
	name, ok := operator.(string)
	if !ok {
		return ""
	}
	return name
}

// bindingFieldErrors translates validator failures from request binding into
// per-field errors. Returns nil for errors that are not field validations,
// such as malformed JSON.
func bindingFieldErrors(err error) []apperror.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fieldErrors := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldErrorMessage(fe),
		})
	}
	return fieldErrors
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
