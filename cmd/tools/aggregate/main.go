// Package main implements the aggregate CLI tool for producing merged
// snapshot CSVs from the snow model's export directory.
//
// For every basin it joins the latest current-season row with the
// climatology row of the same date, classifies both quantities against the
// climatology Q5/Q95 band, and writes one CSV per basin kind:
//
//	regions_merged_data.csv
//	subbasins_merged_data.csv
//
// Usage:
//
//	go run ./cmd/tools/aggregate
//	go run ./cmd/tools/aggregate --out=/tmp/snapshots
//	go run ./cmd/tools/aggregate --kind=subbasin
//
// The tool reads MCASS_DATA_PATH from environment variables (or .env file
// via godotenv). By default the merged files are written into the data
// directory itself, which is where the downstream bulletin tooling picks
// them up.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"

	"mcass/internal/snowdata"
	"mcass/internal/types"
)

// kindTarget pairs a basin kind with the merged file it aggregates into.
type kindTarget struct {
	kind types.BasinKind
	file string
}

var allTargets = []kindTarget{
	{types.BasinKindRegion, "regions_merged_data.csv"},
	{types.BasinKindSubbasin, "subbasins_merged_data.csv"},
}

func main() {
	outFlag := flag.String("out", "", "Output directory for merged CSVs (defaults to the data directory)")
	kindFlag := flag.String("kind", "", "Restrict aggregation to one basin kind: region or subbasin (default both)")
	metadataFlag := flag.String("metadata", "basins.txt", "Basin metadata file name inside the data directory")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aggregate [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Join the latest current-season row of every basin with its climatology\n")
		fmt.Fprintf(os.Stderr, "row and write the merged snapshot CSVs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// A .env file is a local convenience; deployments set real variables.
	if err := godotenv.Load(); err != nil {
		logger.Info("running without a .env file", "error", err)
	}

	dataPath := os.Getenv("MCASS_DATA_PATH")
	if dataPath == "" {
		fmt.Fprintf(os.Stderr, "error: MCASS_DATA_PATH environment variable is required\n")
		os.Exit(1)
	}

	outDir := *outFlag
	if outDir == "" {
		outDir = dataPath
	}

	targets := allTargets
	if *kindFlag != "" {
		kind, err := types.ParseBasinKind(*kindFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --kind %q: must be region or subbasin\n", *kindFlag)
			os.Exit(1)
		}
		targets = nil
		for _, target := range allTargets {
			if target.kind == kind {
				targets = append(targets, target)
			}
		}
	}

	// Ctrl-C cancels the context and lets BuildSnapshot bail out mid-scan.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog := snowdata.NewCatalog(dataPath, *metadataFlag, logger)
	loader := snowdata.NewFileLoader(dataPath, logger, nil)
	service := snowdata.NewService(catalog, loader, logger, nil, nil)

	failed := false
	for _, target := range targets {
		path := filepath.Join(outDir, target.file)
		if err := writeSnapshot(ctx, service, target.kind, path, logger); err != nil {
			logger.Error("aggregation failed",
				"kind", string(target.kind),
				"path", path,
				"error", err,
			)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// writeSnapshot builds the snapshot for one basin kind and writes it as a
// merged CSV. Basins that could not contribute are logged and skipped; only
// a failure of the snapshot itself (an unreadable data directory, a failed
// write) aborts the run.
func writeSnapshot(ctx context.Context, service *snowdata.Service, kind types.BasinKind, path string, logger *slog.Logger) error {
	snapshot, err := service.BuildSnapshot(ctx, kind)
	if err != nil {
		return fmt.Errorf("building %s snapshot: %w", kind, err)
	}

	for code, basinErr := range snapshot.Errors {
		logger.Warn("basin excluded from snapshot",
			"basin_code", code,
			"code", string(basinErr.Code),
			"message", basinErr.Message,
		)
	}

	data, err := csvutil.Marshal(snapshot.Basins)
	if err != nil {
		return fmt.Errorf("encoding snapshot rows: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing merged file: %w", err)
	}

	logger.Info("merged snapshot written",
		"kind", string(kind),
		"path", path,
		"rows", len(snapshot.Basins),
		"excluded", len(snapshot.Errors),
	)
	return nil
}
