// Package types defines the shared domain model for the MCASS dashboard:
// basins, snow observation tables, percentile bands, and the error taxonomy
// used across the loader, renderer, and HTTP layers.
//
// The model mirrors the data contract of the upstream snow model, which
// exports one current-season and one climatology file per basin with the
// columns date, Q5_SWE, Q50_SWE, Q95_SWE, Q5_HS, Q50_HS, Q95_HS.
package types

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC. It marshals to and from the YYYY-MM-DD
// form used by the snow model's export files and by the JSON API.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string, tolerating surrounding whitespace.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// regionDisplayNames maps region codes to the names shown in chart titles.
// Subbasins are named after their gauge instead and are not listed here.
var regionDisplayNames = map[string]string{
	"AMU_DARYA":       "Amu Darya",
	"CHU_TALAS":       "Chu-Talas",
	"ISSYKUL":         "Issykul",
	"MURGHAB_HARIRUD": "Murghab-Harirud",
	"SYR_DARYA":       "Syr Darya",
}

// Basin identifies one basin served by the dashboard. Code is the basin's
// identifier as used in the export file names (for example KGZ01 or
// AMU_DARYA). Name and River come from the optional basin metadata file and
// may be empty.
type Basin struct {
	Code  string    `json:"code"`
	Kind  BasinKind `json:"kind"`
	Name  string    `json:"name,omitempty"`
	River string    `json:"river,omitempty"`
}

// DisplayName returns the human-readable basin name for titles. It prefers
// the metadata name, then the known region names, then a title-cased form of
// the code for regions, and finally the raw code.
func (b Basin) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	if name, ok := regionDisplayNames[b.Code]; ok {
		return name
	}
	if b.Kind == BasinKindRegion {
		return titleCaseCode(b.Code)
	}
	return b.Code
}

// titleCaseCode converts an underscore-delimited code such as NARYN_UPPER
// into "Naryn Upper".
func titleCaseCode(code string) string {
	parts := strings.Split(code, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}

// Band holds the 5th, 50th and 95th percentile values of one quantity on one
// day. Loaded bands always satisfy Q5 <= Q50 <= Q95; rows violating the
// ordering are rejected during load.
type Band struct {
	Q5  float64 `json:"q5"`
	Q50 float64 `json:"q50"`
	Q95 float64 `json:"q95"`
}

// Ordered reports whether the percentiles are non-decreasing.
func (b Band) Ordered() bool {
	return b.Q5 <= b.Q50 && b.Q50 <= b.Q95
}

// SnowRecord is one daily row of a snow table: the percentile bands of snow
// water equivalent and snow height on a single date.
type SnowRecord struct {
	Date Date `json:"date"`
	SWE  Band `json:"swe"`
	HS   Band `json:"hs"`
}

// Band returns the record's band for the given quantity.
func (r SnowRecord) Band(q Quantity) Band {
	if q == QuantityHS {
		return r.HS
	}
	return r.SWE
}

// SnowTable is a time-ordered series of daily snow records. Dates are unique
// and strictly increasing; the loader enforces this on ingest.
type SnowTable struct {
	Records []SnowRecord `json:"records"`
}

// Len returns the number of records.
func (t SnowTable) Len() int {
	return len(t.Records)
}

// Empty reports whether the table has no records.
func (t SnowTable) Empty() bool {
	return len(t.Records) == 0
}

// Dates returns the record dates as time.Time values, in order.
func (t SnowTable) Dates() []time.Time {
	out := make([]time.Time, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Date.Time
	}
	return out
}

// DateRange returns the first and last dates of the table. ok is false for
// an empty table.
func (t SnowTable) DateRange() (first, last Date, ok bool) {
	if len(t.Records) == 0 {
		return Date{}, Date{}, false
	}
	return t.Records[0].Date, t.Records[len(t.Records)-1].Date, true
}

// Window returns the sub-table of records with from <= date <= to. The
// bounds are inclusive.
func (t SnowTable) Window(from, to Date) SnowTable {
	var out SnowTable
	for _, r := range t.Records {
		if r.Date.Before(from.Time) || r.Date.After(to.Time) {
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// At returns the record on the given date, if present.
func (t SnowTable) At(date Date) (SnowRecord, bool) {
	for _, r := range t.Records {
		if r.Date.Equal(date.Time) {
			return r, true
		}
	}
	return SnowRecord{}, false
}

// Last returns the most recent record, if any.
func (t SnowTable) Last() (SnowRecord, bool) {
	if len(t.Records) == 0 {
		return SnowRecord{}, false
	}
	return t.Records[len(t.Records)-1], true
}

// Quantiles returns the per-day percentile series of one quantity as three
// parallel slices, in record order.
func (t SnowTable) Quantiles(q Quantity) (q5, q50, q95 []float64) {
	q5 = make([]float64, len(t.Records))
	q50 = make([]float64, len(t.Records))
	q95 = make([]float64, len(t.Records))
	for i, r := range t.Records {
		band := r.Band(q)
		q5[i] = band.Q5
		q50[i] = band.Q50
		q95[i] = band.Q95
	}
	return q5, q50, q95
}

// BasinDataset bundles the current-season and climatology tables of one
// basin, together with any warnings collected while loading them. Warnings
// are surfaced in response metadata, not in the dataset body.
type BasinDataset struct {
	Basin   Basin     `json:"basin"`
	Current SnowTable `json:"current"`
	Climate SnowTable `json:"climate"`

	Warnings []LoadWarning `json:"-"`
}
