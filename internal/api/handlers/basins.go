// Package handlers contains the HTTP handler implementations for the MCASS
// dashboard API.
//
// This file implements the basin catalog and data endpoints:
//   - Basin listing (GET /v1/basins)
//   - Basin data retrieval (GET /v1/basins/{code}/data)
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mcass/internal/core"
	"mcass/internal/types"
)

// SnowServiceInterface defines the service contract for the basin, chart and
// snapshot handlers. Matches snowdata.Service but is defined locally so
// handler tests can stub the service.
type SnowServiceInterface interface {
	ListBasins(ctx context.Context) ([]types.Basin, error)
	GetBasinData(ctx context.Context, code string) (*types.BasinDataset, error)
	BuildSnapshot(ctx context.Context, kind types.BasinKind) (*types.SnowSnapshot, error)
}

// BasinListResponse is the payload of the basin listing endpoint.
type BasinListResponse struct {
	Basins []types.Basin `json:"basins"`
	Count  int           `json:"count"`
}

// BasinHandler maps HTTP requests to the basin catalog and data operations.
type BasinHandler struct {
	service   SnowServiceInterface
	validator *core.Validator
	logger    *slog.Logger
}

// NewBasinHandler creates a new BasinHandler with the provided dependencies.
func NewBasinHandler(svc SnowServiceInterface, val *core.Validator, logger *slog.Logger) *BasinHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BasinHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the basin endpoints onto the v1 mux.
func (h *BasinHandler) RegisterRoutes(r chi.Router) {
	r.Get("/basins", h.HandleList)
	r.Get("/basins/{code}/data", h.HandleGetData)
}

// HandleList handles GET /v1/basins. It returns every basin the catalog
// discovered in the data directory, regions and sub-basins alike, sorted by
// code.
func (h *BasinHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	basins, err := h.service.ListBasins(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: BasinListResponse{Basins: basins, Count: len(basins)},
	})
}

// HandleGetData handles GET /v1/basins/{code}/data. It returns both snow
// tables of the basin as JSON. Rows skipped during load surface as warnings
// in the response meta, not as errors.
func (h *BasinHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.validator.BasinCode(code); err != nil {
		core.Error(w, r, err)
		return
	}

	ds, err := h.service.GetBasinData(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: ds,
		Meta: types.WarningsMeta(ds.Warnings),
	})
}
