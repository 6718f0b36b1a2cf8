package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mcass/internal/types"
)

func newResponseTestRequest(t *testing.T) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := types.WithRequestID(req.Context(), "req_resp_test")
	return req.WithContext(ctx)
}

// --- JSON Tests ---

func TestJSON_Success(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusOK, APIResponse{Data: map[string]string{"code": "KGZ01"}})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", got)
	}

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is not an object: %T", resp.Data)
	}
	if data["code"] != "KGZ01" {
		t.Errorf("data.code: got %v", data["code"])
	}
}

func TestJSON_NonDefaultStatus(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusAccepted, APIResponse{Data: "queued"})

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestJSON_NilData(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusOK, APIResponse{})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	// Empty envelope serializes to {} thanks to omitempty.
	if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
		t.Errorf("expected empty envelope, got %s", got)
	}
}

func TestJSON_WithMeta(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	warnings := []types.LoadWarning{
		{Code: types.ErrCodeDataMalformedRow, File: "KGZ01_current.txt", Line: 7, Message: "bad numeric value"},
	}
	JSON(rec, req, http.StatusOK, APIResponse{
		Data: []string{"KGZ01"},
		Meta: types.WarningsMeta(warnings),
	})

	var resp struct {
		Meta struct {
			Warnings []string `json:"warnings"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(resp.Meta.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(resp.Meta.Warnings))
	}
	if !strings.Contains(resp.Meta.Warnings[0], "KGZ01_current.txt:7") {
		t.Errorf("warning should carry file:line, got %q", resp.Meta.Warnings[0])
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	// A channel value defeats the JSON encoder.
	JSON(rec, req, http.StatusOK, APIResponse{Data: make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 on marshal failure, got %d", rec.Code)
	}

	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("fallback response is not valid JSON: %v", err)
	}
	if resp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected code %q, got %q", types.ErrCodeInternalUnexpected, resp.Error.Code)
	}
	if resp.Error.Message != "could not encode response" {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
	if resp.Error.RequestID != "req_resp_test" {
		t.Errorf("request_id: got %q", resp.Error.RequestID)
	}
}

// --- Error Tests ---

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) APIErrorResponse {
	t.Helper()
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestError_ValidationError_Returns400(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeValidationInvalidBasinCode, "basin code is invalid", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if resp.Error.Code != "validation_invalid_basin_code" {
		t.Errorf("code: got %q", resp.Error.Code)
	}
	if resp.Error.Message != "basin code is invalid" {
		t.Errorf("message: got %q", resp.Error.Message)
	}
}

func TestError_NotFound_Returns404(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeNotFoundBasin, "basin not found", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if resp.Error.Code != "not_found_basin" {
		t.Errorf("code: got %q", resp.Error.Code)
	}
}

func TestError_MissingBasinData_Returns404(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeDataMissingBasin, "no export files for basin", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestError_EmptyDataset_Returns404(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeDataEmptyDataset, "export files contain no rows", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestError_MalformedSchema_Returns502(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeDataMalformedSchema, "unexpected header", nil)
	Error(rec, req, appErr)

	// Malformed upstream exports are a bad-gateway condition: the fault
	// lies with the data producer, not the client or this service.
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestError_InternalError_Returns500(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeInternalRenderFailure, "chart rendering failed", errors.New("png encode: short write"))
	Error(rec, req, appErr)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	// The wrapped internal error must never reach the client.
	if strings.Contains(rec.Body.String(), "short write") {
		t.Error("internal error detail leaked to client")
	}
	if resp.Error.Message != "chart rendering failed" {
		t.Errorf("message: got %q", resp.Error.Message)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppError(types.ErrCodeNotFoundBasin, "basin not found", nil)
	wrapped := fmt.Errorf("loading dashboard: %w", appErr)
	Error(rec, req, wrapped)

	if rec.Code != http.StatusNotFound {
		t.Errorf("wrapped AppError should still map to 404, got %d", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if resp.Error.Code != "not_found_basin" {
		t.Errorf("code: got %q", resp.Error.Code)
	}
}

func TestError_GenericError_Returns500(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("database exploded with credentials abc123"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if resp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code: got %q", resp.Error.Code)
	}
	if resp.Error.Message != "an unexpected error occurred" {
		t.Errorf("generic errors must use the safe default message, got %q", resp.Error.Message)
	}
	if strings.Contains(rec.Body.String(), "abc123") {
		t.Error("generic error message leaked to client")
	}
}

func TestError_IncludesRequestID(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	Error(rec, req, types.NewAppError(types.ErrCodeNotFoundBasin, "basin not found", nil))

	resp := decodeErrorResponse(t, rec)
	if resp.Error.RequestID != "req_resp_test" {
		t.Errorf("request_id: got %q, want req_resp_test", resp.Error.RequestID)
	}
}

func TestError_IncludesDetails(t *testing.T) {
	req := newResponseTestRequest(t)
	rec := httptest.NewRecorder()

	appErr := types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidQuantity,
		"unknown quantity",
		nil,
		map[string]any{"quantity": "SSE", "supported": []string{"SWE", "HS"}},
	)
	Error(rec, req, appErr)

	resp := decodeErrorResponse(t, rec)
	if resp.Error.Details == nil {
		t.Fatal("details should be present")
	}
	if resp.Error.Details["quantity"] != "SSE" {
		t.Errorf("details.quantity: got %v", resp.Error.Details["quantity"])
	}
}
