package charts

import (
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// bandSeries shades the area between the upper and lower percentile traces
// of one snow table. It implements chart.Series by delegating the fill to
// chart.Draw.BoundedSeries, which walks the upper trace forward and the
// lower trace backward to close a single polygon.
type bandSeries struct {
	name    string
	style   chart.Style
	xvalues []time.Time
	upper   []float64
	lower   []float64
}

// GetName returns the legend label for the band.
func (bs bandSeries) GetName() string {
	return bs.name
}

// GetStyle returns the band style.
func (bs bandSeries) GetStyle() chart.Style {
	return bs.style
}

// GetYAxis returns which YAxis the band draws on.
func (bs bandSeries) GetYAxis() chart.YAxisType {
	return chart.YAxisPrimary
}

// Len returns the number of dates in the band.
func (bs bandSeries) Len() int {
	return len(bs.xvalues)
}

// GetBoundedValues returns the date and the band edges at index.
func (bs bandSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	return chart.TimeToFloat64(bs.xvalues[index]), bs.upper[index], bs.lower[index]
}

// GetBoundedLastValues returns the band edges at the final date.
func (bs bandSeries) GetBoundedLastValues() (x, y1, y2 float64) {
	last := len(bs.xvalues) - 1
	return chart.TimeToFloat64(bs.xvalues[last]), bs.upper[last], bs.lower[last]
}

// Render renders the band.
func (bs bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := bs.style.InheritFrom(defaults)
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, style, bs)
}

// Validate validates the band.
func (bs bandSeries) Validate() error {
	if len(bs.xvalues) == 0 {
		return fmt.Errorf("band series %q must have xvalues set", bs.name)
	}
	if len(bs.upper) != len(bs.xvalues) || len(bs.lower) != len(bs.xvalues) {
		return fmt.Errorf("band series %q must have one upper and one lower value per date", bs.name)
	}
	return nil
}

var (
	_ chart.Series                    = (*bandSeries)(nil)
	_ chart.FullBoundedValuesProvider = (*bandSeries)(nil)
)
