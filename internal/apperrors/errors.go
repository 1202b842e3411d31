package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeForbidden  = "FORBIDDEN"
	CodeConflict   = "STATE_CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// AppError is the error type handlers translate into the response envelope.
// Code is a stable machine-readable identifier, HTTPStatus the status to
// respond with. Err, when set, is the underlying cause and is logged but
// never sent to the client.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), HTTPStatus: http.StatusNotFound}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// Conflict marks an invalid state transition, e.g. cancelling a booking
// that is already cancelled.
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusBadRequest}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// As unwraps err into an *AppError if there is one in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
