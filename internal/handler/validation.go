package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/songlesson/api/internal/model"
)

// NewValidator returns a validator that also knows the song style and
// complexity tiers
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("songstyle", func(fl validator.FieldLevel) bool {
		return model.Style(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("complexity", func(fl validator.FieldLevel) bool {
		return model.Complexity(fl.Field().String()).Valid()
	})
	return v
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string)
		for _, e := range validationErrors {
			details[e.Field()] = e.Tag()
		}
		return details
	}
	return nil
}
