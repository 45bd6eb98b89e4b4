// Package validation sets up the field validator shared by the form
// controllers and the free-text cleaning applied before submission.
package validation

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var NonBlankValidator validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

var WeekdayValidator validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, ok = ParseWeekday(s)
	return ok
}

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("nonblank", NonBlankValidator)
	v.RegisterValidation("weekday", WeekdayValidator)
	return v
}

// Errors unwraps err into field errors. It returns nil when err is nil or
// is not a validation failure.
func Errors(err error) validator.ValidationErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, true
		}
	}
	return 0, false
}

var strict = bluemonday.StrictPolicy()

// Clean strips markup from user-entered text and trims it. Entities are
// decoded back so "R&D" survives.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
