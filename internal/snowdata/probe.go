package snowdata

import (
	"context"
	"fmt"
	"os"
)

// Probe is the health probe for the data directory backing the dashboard.
// It reports unhealthy when the directory vanished or became unreadable
// after startup (unmounted volume, permission change).
type Probe struct {
	dir string
}

// NewProbe creates a data directory probe.
func NewProbe(dir string) *Probe {
	return &Probe{dir: dir}
}

// Name implements the chassis health probe contract.
func (p *Probe) Name() string {
	return "snow_data"
}

// Check verifies the data directory still exists and is listable.
func (p *Probe) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(p.dir)
	if err != nil {
		return fmt.Errorf("data directory inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", p.dir)
	}
	if _, err := os.ReadDir(p.dir); err != nil {
		return fmt.Errorf("data directory unreadable: %w", err)
	}
	return nil
}
