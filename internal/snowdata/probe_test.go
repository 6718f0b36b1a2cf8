package snowdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_HealthyDirectory(t *testing.T) {
	dir := t.TempDir()
	probe := NewProbe(dir)

	assert.Equal(t, "snow_data", probe.Name())
	assert.NoError(t, probe.Check(context.Background()))
}

func TestProbe_MissingDirectory(t *testing.T) {
	probe := NewProbe("/nonexistent/data/dir")

	err := probe.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inaccessible")
}

func TestProbe_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "data", "not a directory")
	probe := NewProbe(filepath.Join(dir, "data"))

	err := probe.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestProbe_CancelledContext(t *testing.T) {
	probe := NewProbe(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, probe.Check(ctx), context.Canceled)
}
