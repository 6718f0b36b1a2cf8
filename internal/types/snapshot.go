package types

import (
	"time"

	"github.com/google/uuid"
)

// NewSnapshotID generates a unique snapshot identifier with the snap_ prefix.
func NewSnapshotID() string {
	return "snap_" + uuid.New().String()
}

// BasinSnapshot is the per-basin row of a snapshot: the latest current-season
// medians joined against the climatology medians of the same date, with the
// threshold classification of each quantity. The csv tags match the column
// layout of the merged snapshot files consumed by downstream bulletins.
type BasinSnapshot struct {
	BasinCode  string         `json:"basin_code" csv:"basin_id"`
	Date       Date           `json:"date" csv:"date"`
	CurrentSWE float64        `json:"current_swe" csv:"current_swe"`
	ClimateSWE float64        `json:"climate_swe" csv:"climate_swe"`
	SWELevel   ThresholdLevel `json:"swe_threshold" csv:"swe_threshold"`
	CurrentHS  float64        `json:"current_hs" csv:"current_hs"`
	ClimateHS  float64        `json:"climate_hs" csv:"climate_hs"`
	HSLevel    ThresholdLevel `json:"hs_threshold" csv:"hs_threshold"`
}

// SnapshotError records why one basin could not contribute to a snapshot.
// Failures are isolated per basin so a single broken export does not sink
// the whole snapshot.
type SnapshotError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SnowSnapshot aggregates the latest situation across basins. Kind is empty
// when the snapshot spans both regions and sub-basins.
type SnowSnapshot struct {
	ID          string                   `json:"id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Kind        BasinKind                `json:"kind,omitempty"`
	Basins      []BasinSnapshot          `json:"basins"`
	Errors      map[string]SnapshotError `json:"errors,omitempty"`
}
