// Package handlers serves the coverage operations over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err's code to a status.  Server-side failures are
// logged and masked.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	resp := ErrorResponse{
		Code:      string(code),
		Message:   err.Error(),
		RequestID: middleware.ContextGetRequestID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("code", string(code)),
			logging.String("request_id", resp.RequestID),
			logging.Err(err))
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}

// queryInt parses an optional integer parameter.  Absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidParam, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}
