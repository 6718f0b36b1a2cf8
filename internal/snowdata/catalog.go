package snowdata

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"

	"mcass/internal/types"
)

// Catalog discovers the basins available in the data directory by scanning
// for current-season export files. Basin kind is derived from the code
// (digits mark a gauged sub-basin); display names and river names come from
// an optional metadata file in the same directory.
type Catalog struct {
	dir          string
	metadataFile string
	logger       *slog.Logger
}

// basinMetaRow is one row of the optional basins.txt metadata file.
type basinMetaRow struct {
	Code  string `csv:"code"`
	River string `csv:"river"`
	Name  string `csv:"name"`
}

// NewCatalog creates a catalog over the given data directory. metadataFile
// is a file name relative to the directory, typically basins.txt.
func NewCatalog(dir, metadataFile string, logger *slog.Logger) *Catalog {
	return &Catalog{
		dir:          dir,
		metadataFile: metadataFile,
		logger:       logger,
	}
}

// Basins scans the data directory and returns the discovered basins sorted
// by code. A basin is listed as soon as its current-season file exists; a
// missing climatology file surfaces later, when the basin is loaded.
func (c *Catalog) Basins(ctx context.Context) ([]types.Basin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to scan data directory",
			err,
		)
	}

	meta := c.loadMetadata()

	basins := make([]types.Basin, 0, len(entries)/2)
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), gzipSuffix)
		code, ok := strings.CutSuffix(name, currentSuffix)
		if !ok || code == "" {
			continue
		}
		// Plain and gzipped exports of the same basin count once.
		if seen[code] {
			continue
		}
		seen[code] = true

		basin := types.Basin{
			Code: code,
			Kind: types.KindForCode(code),
		}
		if m, ok := meta[code]; ok {
			basin.Name = m.Name
			basin.River = m.River
		}
		basins = append(basins, basin)
	}

	sort.Slice(basins, func(i, j int) bool { return basins[i].Code < basins[j].Code })
	return basins, nil
}

// Lookup returns the catalog entry for a basin code.
func (c *Catalog) Lookup(ctx context.Context, code string) (types.Basin, bool, error) {
	basins, err := c.Basins(ctx)
	if err != nil {
		return types.Basin{}, false, err
	}
	for _, b := range basins {
		if b.Code == code {
			return b, true, nil
		}
	}
	return types.Basin{}, false, nil
}

// loadMetadata reads the optional basin metadata file. The file is advisory:
// absence is silent, and a malformed file degrades to code-only labels with
// a logged warning.
func (c *Catalog) loadMetadata() map[string]basinMetaRow {
	path := filepath.Join(c.dir, c.metadataFile)

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("basin metadata file unreadable", "file", c.metadataFile, "error", err)
		}
		return nil
	}
	defer f.Close()

	csvr := csv.NewReader(f)
	csvr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(csvr)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.logger.Warn("basin metadata header unreadable", "file", c.metadataFile, "error", err)
		}
		return nil
	}

	out := make(map[string]basinMetaRow)
	for {
		var row basinMetaRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.logger.Warn("skipping malformed basin metadata row", "file", c.metadataFile, "error", err)
			continue
		}
		if row.Code == "" {
			continue
		}
		out[row.Code] = row
	}
	return out
}
