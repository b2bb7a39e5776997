// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata, so validating the same message type on every frame is cheap.
// Field names in errors are taken from json tags so that they match what the
// client sent.
//
// Custom tags:
//   - roomid: 1 to 64 characters of [A-Za-z0-9_-]
//   - countrycode: two upper-case ASCII letters
//
// Example:
//
//	var msg models.ClickMessage
//	if err := validation.ValidateStruct(&msg); err != nil {
//	    return err
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	roomIDPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// ValidationError is a single failed field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the json name of the field that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "0" for "gt=0").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError is a collection of validation errors.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error joins all field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Details returns the field errors in a form suitable for an API error body.
func (ve *RequestValidationError) Details() []map[string]interface{} {
	fields := make([]map[string]interface{}, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
	}
	return fields
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		mustRegister("roomid", func(fl validator.FieldLevel) bool {
			return roomIDPattern.MatchString(fl.Field().String())
		})
		mustRegister("countrycode", func(fl validator.FieldLevel) bool {
			return countryCodePattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// ValidateStruct validates s. It returns nil on success.
//
// The return type is the concrete error type; callers that store the result
// in an error variable must compare the pointer, not the interface, with nil.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// ValidRoomID reports whether id is an acceptable room identifier.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"roomid":      "%s must be 1-64 characters of letters, digits, '-' or '_'",
	"countrycode": "%s must be a two-letter upper-case country code",
	"url":         "%s must be a valid URL",
	"hostname":    "%s must be a valid hostname",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"eq":    "%s must equal %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// ValidCountryCode reports whether code is two upper-case ASCII letters.
func ValidCountryCode(code string) bool {
	return countryCodePattern.MatchString(code)
}
