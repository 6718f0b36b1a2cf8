// Package handlers contains the HTTP handler implementations for the MCASS
// dashboard API.
//
// This file implements the chart image endpoint:
//   - Chart rendering (GET /v1/basins/{code}/charts/{quantity})
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mcass/internal/core"
	"mcass/internal/types"
)

// chartCacheControl keeps rendered images cacheable by browsers and proxies.
// The export files change at most a few times per day, so five minutes of
// staleness is acceptable.
const chartCacheControl = "public, max-age=300"

// ChartRendererInterface defines the rendering contract for the chart
// handler. Matches charts.Renderer but is defined locally so handler tests
// can stub the renderer.
type ChartRendererInterface interface {
	Render(ds *types.BasinDataset, quantity types.Quantity, format types.ImageFormat) ([]byte, error)
}

// ChartMetricsCollector records rendered charts by quantity and format.
// Implemented by observability.Metrics; nil disables recording.
type ChartMetricsCollector interface {
	RecordChartRender(quantity, format string, duration time.Duration)
}

// ChartHandler serves rendered basin charts.
type ChartHandler struct {
	service   SnowServiceInterface
	renderer  ChartRendererInterface
	validator *core.Validator
	metrics   ChartMetricsCollector
	logger    *slog.Logger
}

// NewChartHandler creates a new ChartHandler with the provided dependencies.
// metrics may be nil.
func NewChartHandler(
	svc SnowServiceInterface,
	renderer ChartRendererInterface,
	val *core.Validator,
	metrics ChartMetricsCollector,
	logger *slog.Logger,
) *ChartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartHandler{
		service:   svc,
		renderer:  renderer,
		validator: val,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts the chart endpoint onto the v1 mux.
func (h *ChartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/basins/{code}/charts/{quantity}", h.HandleGetChart)
}

// HandleGetChart handles GET /v1/basins/{code}/charts/{quantity}.
//
// The quantity path parameter selects SWE or HS; the optional format query
// parameter selects png (default) or svg. Basins whose tables carry no
// plottable rows still produce an image: the renderer serves a placeholder
// instead of failing, so dashboard image tags never break on empty data.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.validator.BasinCode(code); err != nil {
		core.Error(w, r, err)
		return
	}

	quantity, err := types.ParseQuantity(chi.URLParam(r, "quantity"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	format, err := types.ParseImageFormat(r.URL.Query().Get("format"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	ds, err := h.service.GetBasinData(r.Context(), code)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	start := time.Now()
	img, err := h.renderer.Render(ds, quantity, format)
	if err != nil {
		h.logger.Error("chart render failed",
			"basin_code", code,
			"quantity", string(quantity),
			"format", string(format),
			"error", err,
		)
		core.Error(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordChartRender(string(quantity), string(format), time.Since(start))
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", chartCacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
