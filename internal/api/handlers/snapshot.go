// Package handlers contains the HTTP handler implementations for the MCASS
// dashboard API.
//
// This file implements the snapshot endpoint:
//   - Threshold snapshot (GET /v1/snapshot)
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mcass/internal/core"
	"mcass/internal/types"
)

// SnapshotHandler serves the cross-basin threshold snapshot.
type SnapshotHandler struct {
	service SnowServiceInterface
	logger  *slog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler with the provided
// dependencies.
func NewSnapshotHandler(svc SnowServiceInterface, logger *slog.Logger) *SnapshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes mounts the snapshot endpoint onto the v1 mux.
func (h *SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/snapshot", h.HandleGetSnapshot)
}

// HandleGetSnapshot handles GET /v1/snapshot.
//
// The optional kind query parameter restricts the snapshot to regions or
// sub-basins; without it the snapshot spans both. Basins that fail to load
// appear in the snapshot's errors map instead of failing the request.
func (h *SnapshotHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	var kind types.BasinKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := types.ParseBasinKind(raw)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		kind = parsed
	}

	snapshot, err := h.service.BuildSnapshot(r.Context(), kind)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: snapshot})
}
