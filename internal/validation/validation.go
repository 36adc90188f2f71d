// Package validation runs the presence and length checks on API inputs
// and turns validator failures into messages fit for the client.
package validation

import (
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
)

var (
	ErrEmptyFields      = errors.New("Please fill in all fields")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrInvalidYear      = errors.New("Please enter a valid year")
)

// Validator wraps a validator instance with the custom "notfuture" tag,
// which rejects years after the current one.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a Validator. now may be nil, in which case time.Now is used.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{
		validate: validator.New(),
		now:      now,
	}
	// Registration can only fail for an empty tag or a nil func.
	_ = v.validate.RegisterValidation("notfuture", v.notFuture)

	return v
}

// Struct validates s and maps the first failure to one of the package errors.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	first := validationErrors[0]
	switch {
	case first.Tag() == "required":
		return ErrEmptyFields
	case first.Field() == "Password":
		return ErrPasswordTooShort
	case first.Field() == "PublishedYear":
		return ErrInvalidYear
	}

	return fmt.Errorf("invalid %s", first.Field())
}

func (v *Validator) notFuture(fieldLevel validator.FieldLevel) bool {
	return fieldLevel.Field().Int() <= int64(v.now().Year())
}
