package common

import (
	"errors"
	"net/http"
)

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetails attaches a details payload and returns e.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Status is the HTTP status to render, 400 when unset.
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusBadRequest
	}
	return e.HTTPStatus
}

func (e *AppError) body() ErrorBody {
	b := ErrorBody{Code: e.Code, Message: e.Message, Details: e.Details}
	if b.Code == "" {
		b.Code = "BAD_REQUEST"
	}
	if b.Message == "" {
		b.Message = e.Error()
	}
	return b
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
