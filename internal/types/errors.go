package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode classifies an application error. Codes are snake_case strings
// exposed verbatim in API error envelopes, so renaming one is a breaking
// change for clients.
type ErrorCode string

// Handlers and services construct errors from these constants only;
// free-form code strings never enter an envelope.
const (
	// Request validation, all 400.
	ErrCodeValidationInvalidBasinCode ErrorCode = "validation_invalid_basin_code"
	ErrCodeValidationInvalidQuantity  ErrorCode = "validation_invalid_quantity"
	ErrCodeValidationInvalidFormat    ErrorCode = "validation_invalid_image_format"
	ErrCodeValidationInvalidBasinKind ErrorCode = "validation_invalid_basin_kind"

	// Unknown basin code, 404.
	ErrCodeNotFoundBasin ErrorCode = "not_found_basin"

	// Data conditions reported by the loader. Missing files and empty datasets
	// map to 404 (there is nothing to serve for that basin); malformed exports
	// map to 502 because the fault lies with the upstream snow model that
	// produced the files.
	ErrCodeDataMissingBasin    ErrorCode = "data_missing_basin"
	ErrCodeDataEmptyDataset    ErrorCode = "data_empty_dataset"
	ErrCodeDataMalformedSchema ErrorCode = "data_malformed_schema"
	ErrCodeDataMalformedRow    ErrorCode = "data_malformed_row"

	// Failures on our side, 500.
	ErrCodeInternalUnexpected    ErrorCode = "internal_unexpected_error"
	ErrCodeInternalRenderFailure ErrorCode = "internal_render_failure"
)

// HTTPStatus derives the response status from the code's prefix, with the
// two loader 404 conditions handled by name. Codes this function has never
// heard of get 500 rather than a zero status.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case s == string(ErrCodeDataMissingBasin), s == string(ErrCodeDataEmptyDataset):
		return http.StatusNotFound
	case strings.HasPrefix(s, "data_malformed_"):
		return http.StatusBadGateway
	case strings.HasPrefix(s, "internal_"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the error type every layer of the service speaks. It pairs a
// client-facing code and message with an internal cause (never serialized)
// and optional structured details for the envelope.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the internal cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus is shorthand for e.Code.HTTPStatus().
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy carrying the merged detail maps; colliding keys
// take the new value. The receiver is left untouched so a shared error value
// can be annotated per call site.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError is the usual constructor; err may be nil when there is no
// internal cause worth chaining.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails additionally attaches structured details destined
// for the error envelope.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// LoadWarning records a non-fatal condition encountered while parsing a basin
// data file, localized to the offending row where applicable. Warnings travel
// with the loaded dataset so callers can surface them without failing the load.
type LoadWarning struct {
	Code    ErrorCode `json:"code"`
	File    string    `json:"file"`
	Line    int       `json:"line,omitempty"`
	Message string    `json:"message"`
}

// String renders the warning in "file:line: message" form for logs.
func (w LoadWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}
