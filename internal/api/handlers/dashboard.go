// Package handlers contains the HTTP handler implementations for the MCASS
// dashboard API.
//
// This file implements the dashboard page:
//   - Page rendering (GET /)
package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mcass/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DashboardPage is the template model for the dashboard page. Primary is the
// quantity the toggle selects; the other quantity's chart renders below it.
type DashboardPage struct {
	Regions      []types.Basin
	Subbasins    []types.Basin
	SelectedCode string
	Selected     *types.Basin
	Primary      types.Quantity
	Secondary    types.Quantity
	ErrorMessage string
	Warnings     []string
}

// DashboardHandler renders the HTML dashboard page from an embedded
// template.
type DashboardHandler struct {
	service SnowServiceInterface
	tmpl    *template.Template
	logger  *slog.Logger
}

// NewDashboardHandler parses the embedded page template and returns the
// handler. Returns an error if the template fails to parse.
func NewDashboardHandler(svc SnowServiceInterface, logger *slog.Logger) (*DashboardHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to parse page template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service: svc,
		tmpl:    tmpl,
		logger:  logger,
	}, nil
}

// RegisterRoutes mounts the dashboard page onto the root mux.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleIndex)
}

// HandleIndex handles GET /.
//
// Query parameters: basin selects the basin to plot, quantity (SWE or HS)
// selects which chart leads. The page always renders: a basin that fails to
// load shows as an inline message next to the selector, never as an error
// page or a blank response.
func (h *DashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page := DashboardPage{Primary: types.QuantityHS, Secondary: types.QuantitySWE}

	basins, err := h.service.ListBasins(r.Context())
	if err != nil {
		h.logger.Error("dashboard failed to list basins", "error", err)
		page.ErrorMessage = "basin catalog is unavailable"
		h.render(w, page)
		return
	}
	for _, b := range basins {
		if b.Kind == types.BasinKindRegion {
			page.Regions = append(page.Regions, b)
		} else {
			page.Subbasins = append(page.Subbasins, b)
		}
	}

	// The page tolerates an unknown quantity value and falls back to the
	// default; only the JSON API rejects it.
	if quantity, err := types.ParseQuantity(r.URL.Query().Get("quantity")); err == nil {
		page.Primary = quantity
	}
	if page.Primary == types.QuantitySWE {
		page.Secondary = types.QuantityHS
	}

	code := r.URL.Query().Get("basin")
	if code == "" {
		h.render(w, page)
		return
	}
	page.SelectedCode = code

	ds, err := h.service.GetBasinData(r.Context(), code)
	if err != nil {
		h.logger.Warn("dashboard basin failed to load", "basin_code", code, "error", err)
		page.ErrorMessage = basinErrorMessage(err)
		h.render(w, page)
		return
	}
	page.Selected = &ds.Basin
	for _, warn := range ds.Warnings {
		page.Warnings = append(page.Warnings, warn.String())
	}

	h.render(w, page)
}

// render executes the template into a buffer first so a mid-render failure
// cannot produce a half-written page.
func (h *DashboardHandler) render(w http.ResponseWriter, page DashboardPage) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		h.logger.Error("dashboard template execution failed", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// basinErrorMessage maps a load failure onto the inline message shown next
// to the basin selector.
func basinErrorMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "failed to load basin data"
}
