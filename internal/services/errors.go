package services

import (
	"errors"
	"fmt"
	"net/http"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/validation"
)

// ServiceError is an error with a client-safe message and an HTTP status.
// Anything that is not a ServiceError is treated as internal by handlers.
type ServiceError struct {
	Code    string
	Message string
	Status  int
	Fields  validation.Errors
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newError(status int, code, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Status: status, Err: err}
}

func badRequest(code, message string) *ServiceError {
	return newError(http.StatusBadRequest, code, message, nil)
}

// invalid wraps validation failures; any other error passes through.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if errors.As(err, &ve) {
		return &ServiceError{
			Code:    constants.ErrCodeValidation,
			Message: "Validation failed: " + ve.Error(),
			Status:  http.StatusBadRequest,
			Fields:  ve,
		}
	}
	return err
}

// notFoundOr maps repositories.ErrNotFound to a 404 with message.
func notFoundOr(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(http.StatusNotFound, constants.ErrCodeNotFound, message, err)
	}
	return err
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
