package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"mcass/internal/types"
)

// APIResponse is the envelope for successful JSON responses. Meta carries
// non-blocking warnings, such as rows skipped while loading a basin's export
// files.
type APIResponse struct {
	Data interface{}         `json:"data,omitempty"`
	Meta *types.ResponseMeta `json:"meta,omitempty"`
}

// APIErrorResponse is the envelope for error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the structured error body returned to clients.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// errorEnvelope assembles an APIErrorResponse from its parts.
func errorEnvelope(code types.ErrorCode, message string, details map[string]any, requestID string) APIErrorResponse {
	return APIErrorResponse{Error: ErrorDetail{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
	}}
}

// JSON marshals data and writes it with the given status. The body is
// marshaled before the status header goes out, so a marshal failure can
// still degrade to a 500 error envelope instead of a truncated 200.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fallback := errorEnvelope(types.ErrCodeInternalUnexpected,
			"could not encode response", nil, types.GetRequestID(r.Context()))
		// Best effort; there is nothing left to do if this write fails too.
		_ = json.NewEncoder(w).Encode(fallback)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes err as an error envelope. An error that is (or wraps) a
// *types.AppError keeps its code, message, and details, with the HTTP status
// derived from the code. Anything else becomes a 500 with a constant
// message: generic errors can carry file paths or other internals that must
// not reach the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		JSON(w, r, http.StatusInternalServerError, errorEnvelope(
			types.ErrCodeInternalUnexpected, "an unexpected error occurred", nil, requestID))
		return
	}

	JSON(w, r, appErr.HTTPStatus(), errorEnvelope(
		appErr.Code, appErr.Message, appErr.Details, requestID))
}
