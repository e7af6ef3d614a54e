package httpserver

import (
	"github.com/go-playground/validator/v10"
)

type appValidator struct {
	validate *validator.Validate
}

func newValidator() *appValidator {
	return &appValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *appValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
