// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package validation provides struct validation using go-playground/validator v10.
// It exposes a thread-safe singleton validator and translates field errors into
// the API's VALIDATION_ERROR format.
//
// The built-in latitude/longitude tags cover most request payloads:
//
//	type IdentifyRequest struct {
//	    Latitude  float64 `validate:"latitude"`
//	    Longitude float64 `validate:"longitude"`
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError is a collection of field validation failures for one
// request payload.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	var messages []string
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}

// APIError mirrors models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts validation errors to the API error format.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
		}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	var messages []string

	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.field, err.message))
	}

	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{
			"fields": fields,
		},
	}
}

// GetValidator returns the singleton validator instance. Thread-safe; the
// validator caches struct metadata across calls.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator. Returns nil
// when validation passes, or *RequestValidationError describing each failed
// field.
func ValidateStruct(s interface{}) *RequestValidationError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
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

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"datetime":  "%s must be a valid date/time in RFC3339 format",
	"filepath":  "%s must be a valid file path",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
