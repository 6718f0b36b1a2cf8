package types

import (
	"strings"
	"unicode"
)

// Quantity identifies one of the two measured snow quantities.
type Quantity string

const (
	QuantitySWE Quantity = "SWE"
	QuantityHS  Quantity = "HS"
)

// AllQuantities lists every valid quantity. Used by the dashboard page and by
// validators checking quantity path parameters.
var AllQuantities = []Quantity{QuantitySWE, QuantityHS}

// ParseQuantity converts a string (case-insensitive) into a Quantity.
// Returns an AppError with code validation_invalid_quantity for unknown values.
func ParseQuantity(s string) (Quantity, error) {
	switch strings.ToUpper(s) {
	case string(QuantitySWE):
		return QuantitySWE, nil
	case string(QuantityHS):
		return QuantityHS, nil
	default:
		return "", NewAppErrorWithDetails(
			ErrCodeValidationInvalidQuantity,
			"quantity must be SWE or HS",
			nil,
			map[string]any{"quantity": s},
		)
	}
}

// AxisLabel returns the Y-axis label for the quantity, including units.
// SWE is reported in millimetres of water, HS in metres of snow.
func (q Quantity) AxisLabel() string {
	switch q {
	case QuantityHS:
		return "HS (m)"
	default:
		return "SWE (mm)"
	}
}

// BasinKind distinguishes regional basins from gauged sub-basins.
// The upstream snow model encodes the distinction in the basin code itself:
// regional codes carry no digits (AMU_DARYA), gauge codes do (KGZ01).
type BasinKind string

const (
	BasinKindRegion   BasinKind = "region"
	BasinKindSubbasin BasinKind = "subbasin"
)

// ParseBasinKind converts a string into a BasinKind.
// Returns an AppError with code validation_invalid_basin_kind for unknown values.
func ParseBasinKind(s string) (BasinKind, error) {
	switch strings.ToLower(s) {
	case string(BasinKindRegion):
		return BasinKindRegion, nil
	case string(BasinKindSubbasin):
		return BasinKindSubbasin, nil
	default:
		return "", NewAppErrorWithDetails(
			ErrCodeValidationInvalidBasinKind,
			"kind must be region or subbasin",
			nil,
			map[string]any{"kind": s},
		)
	}
}

// KindForCode classifies a basin code by the producer's naming convention:
// any digit in the code marks a gauged sub-basin.
func KindForCode(code string) BasinKind {
	for _, r := range code {
		if unicode.IsDigit(r) {
			return BasinKindSubbasin
		}
	}
	return BasinKindRegion
}

// ThresholdLevel classifies a current-season value against the climatological
// percentile band of the same date.
type ThresholdLevel string

const (
	ThresholdLow    ThresholdLevel = "low"
	ThresholdNormal ThresholdLevel = "normal"
	ThresholdHigh   ThresholdLevel = "high"
)

// ClassifyThreshold compares a current-season median against the climatology
// band for the same date: above Q95 is high, below Q5 is low, anything else
// (bounds included) is normal. Comparisons are strict, matching the producer's
// aggregation tooling.
func ClassifyThreshold(current float64, climate Band) ThresholdLevel {
	switch {
	case current > climate.Q95:
		return ThresholdHigh
	case current < climate.Q5:
		return ThresholdLow
	default:
		return ThresholdNormal
	}
}

// ImageFormat identifies a supported chart output encoding.
type ImageFormat string

const (
	ImageFormatPNG ImageFormat = "png"
	ImageFormatSVG ImageFormat = "svg"
)

// ParseImageFormat converts a string into an ImageFormat, defaulting to PNG
// for the empty string. Returns an AppError with code
// validation_invalid_image_format for unknown values.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(s) {
	case "", string(ImageFormatPNG):
		return ImageFormatPNG, nil
	case string(ImageFormatSVG):
		return ImageFormatSVG, nil
	default:
		return "", NewAppErrorWithDetails(
			ErrCodeValidationInvalidFormat,
			"format must be png or svg",
			nil,
			map[string]any{"format": s},
		)
	}
}

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	switch f {
	case ImageFormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
