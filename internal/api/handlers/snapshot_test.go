package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcass/internal/types"
)

func newTestSnapshotHandler() (*SnapshotHandler, *mockSnowService) {
	svc := &mockSnowService{}
	handler := NewSnapshotHandler(svc, slog.Default())
	return handler, svc
}

func snapshotTestRouter(handler *SnapshotHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/v1", handler.RegisterRoutes)
	return r
}

func TestSnapshotHandler_GetSnapshot_NoKindFilter(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []types.BasinKind{""}, svc.snapshotKinds, "empty kind spans both basin kinds")

	var resp struct {
		Data types.SnowSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "snap_test", resp.Data.ID)
}

func TestSnapshotHandler_GetSnapshot_RegionKind(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot?kind=region", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []types.BasinKind{types.BasinKindRegion}, svc.snapshotKinds)
}

func TestSnapshotHandler_GetSnapshot_SubbasinKind(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot?kind=subbasin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []types.BasinKind{types.BasinKindSubbasin}, svc.snapshotKinds)
}

func TestSnapshotHandler_GetSnapshot_InvalidKind(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot?kind=watershed", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeErrorResponse(t, rr)
	assert.Equal(t, string(types.ErrCodeValidationInvalidBasinKind), resp.Error.Code)
	assert.Empty(t, svc.snapshotKinds, "invalid kinds must not reach the service")
}

func TestSnapshotHandler_GetSnapshot_PerBasinErrorsInBody(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	svc.buildSnapshotFn = func(ctx context.Context, kind types.BasinKind) (*types.SnowSnapshot, error) {
		return &types.SnowSnapshot{
			ID:          "snap_partial",
			GeneratedAt: time.Date(2023, time.January, 15, 12, 0, 0, 0, time.UTC),
			Basins: []types.BasinSnapshot{{
				BasinCode:  "KGZ01",
				Date:       types.NewDate(2023, time.January, 1),
				CurrentSWE: 20,
				ClimateSWE: 18,
				SWELevel:   types.ThresholdNormal,
				CurrentHS:  10,
				ClimateHS:  9,
				HSLevel:    types.ThresholdNormal,
			}},
			Errors: map[string]types.SnapshotError{
				"BROKEN1": {Code: types.ErrCodeDataMissingBasin, Message: "basin BROKEN1 is missing export files"},
			},
		}, nil
	}
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "per-basin failures must not fail the snapshot request")

	var resp struct {
		Data types.SnowSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data.Basins, 1)
	assert.Equal(t, types.ThresholdNormal, resp.Data.Basins[0].SWELevel)
	require.Contains(t, resp.Data.Errors, "BROKEN1")
	assert.Equal(t, types.ErrCodeDataMissingBasin, resp.Data.Errors["BROKEN1"].Code)
}

func TestSnapshotHandler_GetSnapshot_ServiceError(t *testing.T) {
	handler, svc := newTestSnapshotHandler()
	svc.buildSnapshotFn = func(ctx context.Context, kind types.BasinKind) (*types.SnowSnapshot, error) {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to scan data directory", nil)
	}
	r := snapshotTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
