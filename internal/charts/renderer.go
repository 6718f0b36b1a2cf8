// Package charts renders basin snow charts for the MCASS dashboard.
//
// A chart overlays the current season against climatology for one quantity:
// both Q5-Q95 percentile bands as shaded areas and both medians as lines,
// sharing a date axis clipped to the current UTC year. Charts encode to PNG
// or SVG. Datasets with nothing left to plot render as a placeholder image
// rather than an error, so the dashboard never shows a broken image tag.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"mcass/internal/types"
)

// Default canvas dimensions, used when the configured values are unset.
const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// bandAlpha is the fill opacity of the percentile bands, 0.2 of full.
const bandAlpha = 51

// noDataMessage is centered on the placeholder image served when a basin
// has no plottable rows.
const noDataMessage = "no data available"

var (
	climateColor = drawing.ColorBlack
	currentColor = drawing.ColorRed
)

// Renderer draws basin snow charts. The clock bounds the date domain to the
// current UTC year, so a fixed clock renders reproducible charts.
type Renderer struct {
	width  int
	height int
	clock  types.Clock
}

// NewRenderer creates a Renderer with the given canvas size. Non-positive
// dimensions fall back to the defaults, a nil clock to the system clock.
func NewRenderer(width, height int, clock types.Clock) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Renderer{width: width, height: height, clock: clock}
}

// Render draws the chart for one quantity of a basin dataset and encodes it
// in the requested image format.
func (rd *Renderer) Render(ds *types.BasinDataset, quantity types.Quantity, format types.ImageFormat) ([]byte, error) {
	ch := rd.buildChart(ds, quantity)
	var buf bytes.Buffer
	if err := ch.Render(rendererProvider(format), &buf); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalRenderFailure,
			fmt.Sprintf("failed to render %s chart for basin %s", quantity, ds.Basin.Code), err)
	}
	return buf.Bytes(), nil
}

// buildChart assembles the chart model for one quantity. Bands draw under
// the median lines, climatology under the current season.
func (rd *Renderer) buildChart(ds *types.BasinDataset, quantity types.Quantity) chart.Chart {
	from, to, ok := rd.domain(ds)
	if !ok {
		return rd.placeholder(ds.Basin, quantity)
	}

	yearEnd := endOfYear(rd.clock.Now().UTC().Year())
	climate := newSeriesData(ds.Climate.Window(from, to), quantity, yearEnd)
	current := newSeriesData(ds.Current.Window(from, to), quantity, yearEnd)
	if climate.empty() && current.empty() {
		return rd.placeholder(ds.Basin, quantity)
	}

	series := make([]chart.Series, 0, 4)
	if !climate.empty() {
		series = append(series, bandSeries{
			name:    fmt.Sprintf("Norm %s range", quantity),
			style:   bandStyle(climateColor),
			xvalues: climate.xs,
			upper:   climate.q95,
			lower:   climate.q5,
		})
	}
	if !current.empty() {
		series = append(series, bandSeries{
			name:    fmt.Sprintf("Current %s range", quantity),
			style:   bandStyle(currentColor),
			xvalues: current.xs,
			upper:   current.q95,
			lower:   current.q5,
		})
	}
	if !climate.empty() {
		series = append(series, chart.TimeSeries{
			Name:    fmt.Sprintf("Norm %s", quantity),
			Style:   lineStyle(climateColor, climate.single),
			XValues: climate.xs,
			YValues: climate.q50,
		})
	}
	if !current.empty() {
		series = append(series, chart.TimeSeries{
			Name:    fmt.Sprintf("Current %s", quantity),
			Style:   lineStyle(currentColor, current.single),
			XValues: current.xs,
			YValues: current.q50,
		})
	}

	// The axis range pins to the domain, widened to any padding a lone
	// record introduced. Zero-width date ranges do not render.
	axisMin, axisMax := from.Time, to.Time
	for _, sd := range []seriesData{climate, current} {
		if sd.empty() {
			continue
		}
		if first := sd.xs[0]; first.Before(axisMin) {
			axisMin = first
		}
		if last := sd.xs[len(sd.xs)-1]; last.After(axisMax) {
			axisMax = last
		}
	}
	if !axisMax.After(axisMin) {
		axisMax = axisMin.Add(24 * time.Hour)
	}

	ch := chart.Chart{
		Title:      title(ds.Basin, quantity),
		Width:      rd.width,
		Height:     rd.height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(axisMin),
				Max: chart.TimeToFloat64(axisMax),
			},
		},
		YAxis:  chart.YAxis{Name: quantity.AxisLabel()},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

// domain returns the chart's date domain: the union of both tables' ranges
// clipped to the clock's current UTC year. ok is false when the clip leaves
// no domain at all.
func (rd *Renderer) domain(ds *types.BasinDataset) (from, to types.Date, ok bool) {
	curFirst, curLast, curOK := ds.Current.DateRange()
	climFirst, climLast, climOK := ds.Climate.DateRange()
	switch {
	case curOK && climOK:
		from, to = minDate(curFirst, climFirst), maxDate(curLast, climLast)
	case curOK:
		from, to = curFirst, curLast
	case climOK:
		from, to = climFirst, climLast
	default:
		return types.Date{}, types.Date{}, false
	}

	year := rd.clock.Now().UTC().Year()
	if start := startOfYear(year); from.Before(start.Time) {
		from = start
	}
	if end := endOfYear(year); to.After(end.Time) {
		to = end
	}
	if to.Before(from.Time) {
		return types.Date{}, types.Date{}, false
	}
	return from, to, true
}

// placeholder builds the image served when a basin has no plottable rows:
// the usual title over a blank canvas with a centered message.
func (rd *Renderer) placeholder(b types.Basin, q types.Quantity) chart.Chart {
	day := rd.clock.Now().UTC().Truncate(24 * time.Hour)
	ch := chart.Chart{
		Title:      title(b, q),
		Width:      rd.width,
		Height:     rd.height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}},
		// The library refuses to render a chart with no visible series.
		// A transparent two-point line satisfies it without drawing.
		Series: []chart.Series{chart.TimeSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			XValues: []time.Time{day, day.Add(24 * time.Hour)},
			YValues: []float64{0, 1},
		}},
	}
	ch.Elements = []chart.Renderable{messageLabel(noDataMessage)}
	return ch
}

// title returns the chart heading. Sub-basins are titled by river and gauge
// code when the catalog knows them, regions by their display name.
func title(b types.Basin, q types.Quantity) string {
	switch {
	case b.Kind == types.BasinKindSubbasin && b.River != "":
		return fmt.Sprintf("%s situation for basin of river %s (gauge %s)", q, b.River, b.Code)
	case b.Kind == types.BasinKindSubbasin:
		return fmt.Sprintf("%s situation for basin %s", q, b.Code)
	default:
		return fmt.Sprintf("%s situation for the %s basin", q, b.DisplayName())
	}
}

// seriesData is one table's plottable form: dates plus the three percentile
// traces of the chosen quantity, in record order.
type seriesData struct {
	xs     []time.Time
	q5     []float64
	q50    []float64
	q95    []float64
	single bool
}

func (sd seriesData) empty() bool {
	return len(sd.xs) == 0
}

// newSeriesData extracts the percentile traces of one quantity. A lone
// record is duplicated one day away, padding backward at the year boundary,
// since the chart library rejects zero-width date domains.
func newSeriesData(t types.SnowTable, q types.Quantity, yearEnd types.Date) seriesData {
	sd := seriesData{xs: t.Dates()}
	sd.q5, sd.q50, sd.q95 = t.Quantiles(q)
	if len(sd.xs) != 1 {
		return sd
	}
	sd.single = true
	if pad := sd.xs[0].Add(24 * time.Hour); pad.After(yearEnd.Time) {
		sd.xs = []time.Time{sd.xs[0].Add(-24 * time.Hour), sd.xs[0]}
		sd.q5 = []float64{sd.q5[0], sd.q5[0]}
		sd.q50 = []float64{sd.q50[0], sd.q50[0]}
		sd.q95 = []float64{sd.q95[0], sd.q95[0]}
	} else {
		sd.xs = append(sd.xs, pad)
		sd.q5 = append(sd.q5, sd.q5[0])
		sd.q50 = append(sd.q50, sd.q50[0])
		sd.q95 = append(sd.q95, sd.q95[0])
	}
	return sd
}

// bandStyle fills a band with a translucent tint, hiding the outline by
// matching the stroke to the fill.
func bandStyle(col drawing.Color) chart.Style {
	fill := col.WithAlpha(bandAlpha)
	return chart.Style{
		StrokeColor: fill,
		FillColor:   fill,
	}
}

// lineStyle draws a median as a solid line. Lone records also get a dot,
// since a one-point line has no stroke to show.
func lineStyle(col drawing.Color, single bool) chart.Style {
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
	}
	if single {
		st.DotWidth = 4
		st.DotColor = col
	}
	return st
}

// messageLabel centers a message on the chart canvas.
func messageLabel(msg string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		chart.Draw.TextWithin(r, msg, canvasBox, chart.Style{
			Font:                defaults.Font,
			FontSize:            16,
			FontColor:           chart.ColorAlternateGray,
			TextHorizontalAlign: chart.TextHorizontalAlignCenter,
			TextVerticalAlign:   chart.TextVerticalAlignMiddle,
		})
	}
}

// rendererProvider maps an image format onto the matching chart backend.
func rendererProvider(format types.ImageFormat) chart.RendererProvider {
	if format == types.ImageFormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

func startOfYear(year int) types.Date {
	return types.NewDate(year, time.January, 1)
}

func endOfYear(year int) types.Date {
	return types.NewDate(year, time.December, 31)
}

func minDate(a, b types.Date) types.Date {
	if b.Before(a.Time) {
		return b
	}
	return a
}

func maxDate(a, b types.Date) types.Date {
	if b.After(a.Time) {
		return b
	}
	return a
}
