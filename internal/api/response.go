package api

import (
	"errors"
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/query"
	"buddhist-lent/pledgeboard/internal/services"
	"buddhist-lent/pledgeboard/internal/validation"
)

// ErrorData is the payload of error responses that carry details.
type ErrorData struct {
	Code   string            `json:"code"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// respondServiceError maps service and parameter errors to their status.
// Anything else is logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	var pe *query.ParamError
	if errors.As(err, &pe) {
		common.RespondErrorData(w, initTime, err, pe.Error(),
			ErrorData{Code: constants.ErrCodeInvalidParam}, http.StatusBadRequest)
		return
	}

	if se, ok := services.AsServiceError(err); ok {
		common.RespondErrorData(w, initTime, err, se.Message,
			ErrorData{Code: se.Code, Fields: se.Fields}, se.Status)
		return
	}

	common.RespondErrorData(w, initTime, err, constants.MsgInternalError,
		ErrorData{Code: constants.ErrCodeInternalError}, http.StatusInternalServerError)
}

// inputError is a malformed request. message is what the caller sees; cause
// is only logged.
type inputError struct {
	message string
	cause   error
}

func (e *inputError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *inputError) Unwrap() error { return e.cause }

func invalidInput(message string, cause error) error {
	return &inputError{message: message, cause: cause}
}

// respondBadRequest answers 400. Only messages written by this service reach
// the client; library error text stays in the log.
func respondBadRequest(w http.ResponseWriter, initTime time.Time, err error) {
	message := constants.MsgInvalidRequest
	var ie *inputError
	var pe *query.ParamError
	switch {
	case errors.As(err, &ie):
		message = ie.message
	case errors.As(err, &pe):
		message = pe.Error()
	}
	if err != nil {
		logging.Warn("Rejected request", "message", message, "error", err)
	}
	common.RespondErrorData(w, initTime, err, message,
		ErrorData{Code: constants.ErrCodeInvalidParam}, http.StatusBadRequest)
}
