package snowdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mcass/internal/types"
)

// SnapshotConcurrency is the maximum number of basins loaded in parallel
// during a snapshot build.
const SnapshotConcurrency = 8

// Basin load outcome labels recorded to the metrics backend.
const (
	outcomeSuccess   = "success"
	outcomeMissing   = "missing"
	outcomeMalformed = "malformed"
	outcomeEmpty     = "empty"
	outcomeError     = "error"
)

// Metrics records loader and snapshot telemetry. Satisfied by
// observability.Metrics; a nil Metrics disables recording.
type Metrics interface {
	RecordBasinLoad(outcome string)
	RecordRowSkipped(reason string)
	RecordCacheLookup(hit bool)
	RecordSnapshot(duration time.Duration, basinErrors int)
	SetCatalogBasins(n int)
}

// Service is the basin data facade consumed by the HTTP handlers and the
// aggregation CLI: catalog listing, per-basin dataset loading, and snapshot
// aggregation across basins.
type Service struct {
	catalog *Catalog
	loader  Loader
	logger  *slog.Logger
	metrics Metrics
	clock   types.Clock
}

// NewService wires the catalog and loader into a service. metrics may be
// nil; clock defaults to the real clock when nil.
func NewService(catalog *Catalog, loader Loader, logger *slog.Logger, metrics Metrics, clock types.Clock) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Service{
		catalog: catalog,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// ListBasins returns the basins currently present in the data directory.
func (s *Service) ListBasins(ctx context.Context) ([]types.Basin, error) {
	basins, err := s.catalog.Basins(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SetCatalogBasins(len(basins))
	}
	return basins, nil
}

// GetBasin resolves a basin code against the catalog.
func (s *Service) GetBasin(ctx context.Context, code string) (types.Basin, error) {
	basin, ok, err := s.catalog.Lookup(ctx, code)
	if err != nil {
		return types.Basin{}, err
	}
	if !ok {
		return types.Basin{}, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundBasin,
			fmt.Sprintf("basin %s is not in the catalog", code),
			nil,
			map[string]any{"basin_code": code},
		)
	}
	return basin, nil
}

// GetBasinData loads the dataset for one basin, resolving the code against
// the catalog first so unknown codes fail with not_found_basin rather than
// leaking file-system details.
func (s *Service) GetBasinData(ctx context.Context, code string) (*types.BasinDataset, error) {
	basin, err := s.GetBasin(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, basin)
}

// load delegates to the loader and records the outcome.
func (s *Service) load(ctx context.Context, basin types.Basin) (*types.BasinDataset, error) {
	ds, err := s.loader.LoadBasin(ctx, basin)
	if s.metrics != nil {
		s.metrics.RecordBasinLoad(loadOutcome(err))
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// BuildSnapshot joins the latest current-season row of every basin with the
// climatology row of the same date and classifies both quantities against
// the climatology thresholds. kind filters the snapshot to regions or
// sub-basins; the zero value spans both.
//
// Basin failures are isolated: a basin that cannot contribute lands in the
// error map and the snapshot is built from the rest.
func (s *Service) BuildSnapshot(ctx context.Context, kind types.BasinKind) (*types.SnowSnapshot, error) {
	start := s.clock.Now()

	basins, err := s.ListBasins(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		rows   []types.BasinSnapshot
		errMap = make(map[string]types.SnapshotError)
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(SnapshotConcurrency)

	for _, basin := range basins {
		if kind != "" && basin.Kind != kind {
			continue
		}
		basin := basin
		g.Go(func() error {
			row, err := s.snapshotBasin(gCtx, basin)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Error isolation: record and let the other basins finish.
				errMap[basin.Code] = toSnapshotError(err)
				return nil
			}
			rows = append(rows, row)
			return nil
		})
	}
	// Workers never propagate errors, so Wait only synchronizes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].BasinCode < rows[j].BasinCode })

	snap := &types.SnowSnapshot{
		ID:          types.NewSnapshotID(),
		GeneratedAt: s.clock.Now().UTC(),
		Kind:        kind,
		Basins:      rows,
	}
	if len(errMap) > 0 {
		snap.Errors = errMap
	}

	duration := s.clock.Now().Sub(start)
	if s.metrics != nil {
		s.metrics.RecordSnapshot(duration, len(errMap))
	}
	s.logger.Info("snapshot built",
		"snapshot_id", snap.ID,
		"basins", len(rows),
		"errors", len(errMap),
		"duration_ms", duration.Milliseconds(),
	)
	return snap, nil
}

// snapshotBasin produces the snapshot row for one basin: the last
// current-season record joined with the climatology record of the same date.
func (s *Service) snapshotBasin(ctx context.Context, basin types.Basin) (types.BasinSnapshot, error) {
	ds, err := s.load(ctx, basin)
	if err != nil {
		return types.BasinSnapshot{}, err
	}

	last, ok := ds.Current.Last()
	if !ok {
		// The loader guarantees non-empty tables; guard anyway.
		return types.BasinSnapshot{}, types.NewAppError(
			types.ErrCodeDataEmptyDataset,
			fmt.Sprintf("basin %s has no current-season rows", basin.Code),
			nil,
		)
	}
	climate, ok := ds.Climate.At(last.Date)
	if !ok {
		return types.BasinSnapshot{}, types.NewAppErrorWithDetails(
			types.ErrCodeDataMissingBasin,
			fmt.Sprintf("climatology has no row for %s", last.Date),
			nil,
			map[string]any{"date": last.Date.String()},
		)
	}

	return types.BasinSnapshot{
		BasinCode:  basin.Code,
		Date:       last.Date,
		CurrentSWE: last.SWE.Q50,
		ClimateSWE: climate.SWE.Q50,
		SWELevel:   types.ClassifyThreshold(last.SWE.Q50, climate.SWE),
		CurrentHS:  last.HS.Q50,
		ClimateHS:  climate.HS.Q50,
		HSLevel:    types.ClassifyThreshold(last.HS.Q50, climate.HS),
	}, nil
}

// loadOutcome maps a loader error to its metrics label.
func loadOutcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case types.ErrCodeDataMissingBasin:
			return outcomeMissing
		case types.ErrCodeDataMalformedSchema:
			return outcomeMalformed
		case types.ErrCodeDataEmptyDataset:
			return outcomeEmpty
		}
	}
	return outcomeError
}

// toSnapshotError converts a per-basin failure into its snapshot error map
// entry without leaking wrapped internals.
func toSnapshotError(err error) types.SnapshotError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return types.SnapshotError{Code: appErr.Code, Message: appErr.Message}
	}
	return types.SnapshotError{
		Code:    types.ErrCodeInternalUnexpected,
		Message: "failed to load basin",
	}
}
