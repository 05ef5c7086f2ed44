package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var (
	timeRe  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// bookingdate: strict YYYY-MM-DD, a real calendar date, at most 2 years out
	v.RegisterValidation("bookingdate", func(fl validator.FieldLevel) bool {
		return ValidBookingDate(fl.Field().String())
	})

	// bookingtime: strict HH:MM, 00:00-23:59
	v.RegisterValidation("bookingtime", func(fl validator.FieldLevel) bool {
		return timeRe.MatchString(fl.Field().String())
	})

	return v
}

// ValidBookingDate checks strict YYYY-MM-DD form, rejects impossible dates
// like 2025-13-01, and bounds the date to 2 years from now.
func ValidBookingDate(date string) bool {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	// time.Parse normalizes out-of-range components; round-trip to reject them
	if parsed.Format("2006-01-02") != date {
		return false
	}
	return !parsed.After(time.Now().AddDate(2, 0, 0))
}

// ValidEmail checks the basic local@domain.tld pattern.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[err.Field()] = getErrorMessage(err)
		}
	}

	return errors
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "bookingdate":
		return "Must be a valid date (YYYY-MM-DD) within 2 years"
	case "bookingtime":
		return "Must be a valid time (HH:MM)"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "oneof":
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	case "uuid":
		return "Must be a valid UUID"
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// formats validation errors map into single string
func FormatValidationErrors(errors map[string]string) string {
	var msgs []string
	for field, msg := range errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}
