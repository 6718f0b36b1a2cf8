// Package snowdata loads the per-basin export files produced by the snow
// model, enforces the data contract on ingest, and exposes the basin catalog,
// dataset loading, and snapshot aggregation consumed by the HTTP handlers and
// the aggregation CLI.
//
// The contract per basin is a pair of files in the data directory:
// <code>_current.txt with the running season and <code>_climate.txt with the
// long-term climatology. Both are comma-separated with a header row and the
// columns date, Q5_SWE, Q50_SWE, Q95_SWE, Q5_HS, Q50_HS, Q95_HS.
package snowdata

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/klauspost/compress/gzip"

	"mcass/internal/types"
)

// Export file naming convention.
const (
	currentSuffix = "_current.txt"
	climateSuffix = "_climate.txt"
	gzipSuffix    = ".gz"
)

// requiredColumns is the export schema. Column matching is case-sensitive;
// extra columns are ignored.
var requiredColumns = []string{"date", "Q5_SWE", "Q50_SWE", "Q95_SWE", "Q5_HS", "Q50_HS", "Q95_HS"}

// Row skip reasons recorded to the metrics backend.
const (
	reasonDecode          = "decode"
	reasonPercentileOrder = "percentile_order"
	reasonDateOrder       = "date_order"
)

// Loader loads the current-season and climatology tables for one basin.
type Loader interface {
	LoadBasin(ctx context.Context, basin types.Basin) (*types.BasinDataset, error)
}

// exportRow matches the column layout of the snow model's export files.
// types.Date implements encoding.TextUnmarshaler, so csvutil parses the
// YYYY-MM-DD date column directly.
type exportRow struct {
	Date   types.Date `csv:"date"`
	Q5SWE  float64    `csv:"Q5_SWE"`
	Q50SWE float64    `csv:"Q50_SWE"`
	Q95SWE float64    `csv:"Q95_SWE"`
	Q5HS   float64    `csv:"Q5_HS"`
	Q50HS  float64    `csv:"Q50_HS"`
	Q95HS  float64    `csv:"Q95_HS"`
}

// FileLoader reads basin datasets from the export directory. A load failure
// is always scoped to the requested basin; other basins stay available.
type FileLoader struct {
	dir     string
	logger  *slog.Logger
	metrics Metrics
}

// NewFileLoader creates a loader over the given data directory. metrics may
// be nil, which disables row-skip telemetry.
func NewFileLoader(dir string, logger *slog.Logger, metrics Metrics) *FileLoader {
	return &FileLoader{
		dir:     dir,
		logger:  logger,
		metrics: metrics,
	}
}

// LoadBasin reads and validates both export files of the basin. Rows that
// violate the data contract are skipped with a warning; the returned dataset
// only contains rows on which the percentile-ordering and date-ordering
// invariants hold.
func (l *FileLoader) LoadBasin(ctx context.Context, basin types.Basin) (*types.BasinDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	currentName := basin.Code + currentSuffix
	climateName := basin.Code + climateSuffix

	currentFile, currentErr := l.open(currentName)
	climateFile, climateErr := l.open(climateName)

	var missing []string
	if errors.Is(currentErr, fs.ErrNotExist) {
		missing = append(missing, currentName)
	}
	if errors.Is(climateErr, fs.ErrNotExist) {
		missing = append(missing, climateName)
	}
	if len(missing) > 0 {
		closeAll(currentFile, climateFile)
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeDataMissingBasin,
			fmt.Sprintf("no export data for basin %s", basin.Code),
			nil,
			map[string]any{"missing_files": missing},
		)
	}
	if currentErr != nil || climateErr != nil {
		closeAll(currentFile, climateFile)
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			fmt.Sprintf("failed to open export data for basin %s", basin.Code),
			errors.Join(currentErr, climateErr),
		)
	}
	defer closeAll(currentFile, climateFile)

	ds := &types.BasinDataset{Basin: basin}
	sink := func(w types.LoadWarning, reason string) {
		ds.Warnings = append(ds.Warnings, w)
		if l.metrics != nil {
			l.metrics.RecordRowSkipped(reason)
		}
	}

	current, err := parseTable(currentFile, currentName, sink)
	if err != nil {
		return nil, err
	}
	climate, err := parseTable(climateFile, climateName, sink)
	if err != nil {
		return nil, err
	}

	ds.Current = current
	ds.Climate = climate

	if len(ds.Warnings) > 0 {
		l.logger.Warn("rows skipped while loading basin",
			"basin", basin.Code,
			"skipped", len(ds.Warnings),
		)
	}
	return ds, nil
}

// open opens an export file by name. When the plain file is absent but a
// .gz sibling exists, the compressed file is read transparently; the
// producer ships gzipped exports for large basins.
func (l *FileLoader) open(name string) (io.ReadCloser, error) {
	path := filepath.Join(l.dir, name)

	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	gzFile, gzErr := os.Open(path + gzipSuffix)
	if gzErr != nil {
		// Report the plain file as the missing one; the .gz sibling is a
		// fallback, not part of the contract.
		return nil, err
	}
	zr, zrErr := gzip.NewReader(gzFile)
	if zrErr != nil {
		_ = gzFile.Close()
		return nil, fmt.Errorf("open %s: %w", name+gzipSuffix, zrErr)
	}
	return &gzipReadCloser{zr: zr, file: gzFile}, nil
}

// warningSink receives one skipped-row warning together with a stable reason
// label for metrics.
type warningSink func(w types.LoadWarning, reason string)

// parseTable decodes one export file into a SnowTable. Malformed rows and
// rows violating the ordering invariants are skipped through the sink; a
// schema-level problem (missing required columns) fails the whole file.
func parseTable(r io.Reader, filename string, sink warningSink) (types.SnowTable, error) {
	br := bufio.NewReader(r)

	csvr := csv.NewReader(br)
	csvr.Comma = sniffDelimiter(br)
	csvr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(csvr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return types.SnowTable{}, types.NewAppError(
				types.ErrCodeDataEmptyDataset,
				fmt.Sprintf("%s is empty", filename),
				nil,
			)
		}
		return types.SnowTable{}, types.NewAppError(
			types.ErrCodeDataMalformedSchema,
			fmt.Sprintf("%s: failed to read header", filename),
			err,
		)
	}

	if missing := missingColumns(dec.Header()); len(missing) > 0 {
		return types.SnowTable{}, types.NewAppErrorWithDetails(
			types.ErrCodeDataMalformedSchema,
			fmt.Sprintf("%s: required columns missing", filename),
			nil,
			map[string]any{"missing_columns": missing},
		)
	}

	var (
		table    types.SnowTable
		lastDate types.Date
		line     = 1 // header occupies line 1
	)
	for {
		line++
		var row exportRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sink(types.LoadWarning{
				Code:    types.ErrCodeDataMalformedRow,
				File:    filename,
				Line:    line,
				Message: decodeErrorMessage(err),
			}, reasonDecode)
			continue
		}

		rec := types.SnowRecord{
			Date: row.Date,
			SWE:  types.Band{Q5: row.Q5SWE, Q50: row.Q50SWE, Q95: row.Q95SWE},
			HS:   types.Band{Q5: row.Q5HS, Q50: row.Q50HS, Q95: row.Q95HS},
		}

		if !rec.SWE.Ordered() || !rec.HS.Ordered() {
			sink(types.LoadWarning{
				Code:    types.ErrCodeDataMalformedRow,
				File:    filename,
				Line:    line,
				Message: "percentiles out of order",
			}, reasonPercentileOrder)
			continue
		}
		if !table.Empty() && !rec.Date.After(lastDate.Time) {
			sink(types.LoadWarning{
				Code:    types.ErrCodeDataMalformedRow,
				File:    filename,
				Line:    line,
				Message: fmt.Sprintf("date %s is not after previous row", rec.Date),
			}, reasonDateOrder)
			continue
		}

		lastDate = rec.Date
		table.Records = append(table.Records, rec)
	}

	if table.Empty() {
		return table, types.NewAppError(
			types.ErrCodeDataEmptyDataset,
			fmt.Sprintf("%s contains no usable rows", filename),
			nil,
		)
	}
	return table, nil
}

// sniffDelimiter inspects the header line without consuming it. Comma is the
// contract delimiter; the producer's older exports were tab-separated, so a
// header containing tabs but no commas switches the reader to TSV.
func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if !bytes.ContainsRune(peek, ',') && bytes.ContainsRune(peek, '\t') {
		return '\t'
	}
	return ','
}

// missingColumns returns the required columns absent from the header, in
// schema order.
func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// decodeErrorMessage strips the csvutil/csv prefix noise down to a short
// human-readable reason for the warning.
func decodeErrorMessage(err error) string {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("malformed record: %v", parseErr.Err)
	}
	return err.Error()
}

func closeAll(closers ...io.ReadCloser) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}

// gzipReadCloser closes both the gzip stream and the backing file.
type gzipReadCloser struct {
	zr   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipReadCloser) Close() error {
	zErr := g.zr.Close()
	fErr := g.file.Close()
	if zErr != nil {
		return zErr
	}
	return fErr
}
