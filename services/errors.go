package services

import "fmt"

// AppError carries the HTTP status a service failure maps to:
// 404 not-found (also for foreign-owned items), 400 validation,
// 409 name/tree conflicts, 500 storage failures.
type AppError struct {
	HTTPCode int
	Message  string
	Field    string
	Data     interface{}
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAppError(httpCode int, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Err: err}
}

func newAppErrorWithData(httpCode int, message string, data interface{}, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Data: data, Err: err}
}

// newFieldError attaches a validation failure to a specific input field so the
// client can re-render the form without losing its place.
func newFieldError(httpCode int, field string, message string) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Field: field}
}
