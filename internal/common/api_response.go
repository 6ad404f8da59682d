package common

import (
	"encoding/json"
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. message is what the
// client sees; err is only logged, so internal error text never leaks.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	RespondErrorData(w, initTime, err, message, nil, statusCode...)
}

// RespondErrorData is RespondError with a payload, e.g. field errors.
func RespondErrorData(w http.ResponseWriter, initTime time.Time, err error, message string, data any, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	if err != nil && code >= http.StatusInternalServerError {
		logging.Error("Request failed", "status_code", code, "error", err)
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondPermissionDenied answers 403 naming the role the route needs.
func RespondPermissionDenied(w http.ResponseWriter, requiredRole string) {
	writeJSON(w, http.StatusForbidden, dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      "Forbidden: requires " + requiredRole + " role",
		ResponseTime: "0ms",
	})
}

// RespondUnauthorized answers 401.
func RespondUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      constants.MsgUnauthorized,
		ResponseTime: "0ms",
	})
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
