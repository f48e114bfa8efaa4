// Package errors provides custom error types for Atlas
package errors

import (
	"fmt"
	"net/http"
)

// AtlasError is the base interface for all Atlas errors
type AtlasError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError is the base implementation of AtlasError
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) HTTPStatus() int {
	return e.StatusCode
}

func (e *BaseError) Code() string {
	return e.ErrorCode
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	BaseError
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s not found", resource),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_FOUND",
		},
		Resource: resource,
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ValidationError reports one or more rejected fields. The mutation that
// produced it persisted nothing.
type ValidationError struct {
	BaseError
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Fields: map[string]string{field: message},
	}
}

// NewValidationErrors creates a validation error covering several fields.
func NewValidationErrors(fields map[string]string) *ValidationError {
	msg := "validation failed"
	for _, m := range fields {
		msg = m
		break
	}
	return &ValidationError{
		BaseError: BaseError{
			Message:    msg,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Fields: fields,
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// UnauthorizedError represents an authentication error
type UnauthorizedError struct {
	BaseError
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			ErrorCode:  "UNAUTHORIZED",
		},
	}
}

// InternalError represents an internal server error
type InternalError struct {
	BaseError
	OriginalError error
}

func NewInternalError(original error) *InternalError {
	return &InternalError{
		BaseError: BaseError{
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_ERROR",
		},
		OriginalError: original,
	}
}

// ConflictError represents a conflict error (e.g., duplicate)
type ConflictError struct {
	BaseError
	Resource string
}

func NewConflictError(resource string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s already exists", resource),
			StatusCode: http.StatusConflict,
			ErrorCode:  "CONFLICT",
		},
		Resource: resource,
	}
}

// BadRequestError represents a generic bad request error
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "BAD_REQUEST",
		},
	}
}

// ToHTTPError converts any error to an appropriate HTTP response
func ToHTTPError(err error) (int, map[string]interface{}) {
	if err == nil {
		return http.StatusOK, nil
	}

	if ve, ok := err.(*ValidationError); ok {
		return ve.HTTPStatus(), map[string]interface{}{
			"error":   ve.Code(),
			"message": ve.Error(),
			"fields":  ve.Fields,
		}
	}

	if ae, ok := err.(AtlasError); ok {
		return ae.HTTPStatus(), map[string]interface{}{
			"error":   ae.Code(),
			"message": ae.Error(),
		}
	}

	return http.StatusInternalServerError, map[string]interface{}{
		"error":   "INTERNAL_ERROR",
		"message": "internal server error",
	}
}
