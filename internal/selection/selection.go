// Package selection holds one session's dashboard state: the selected year,
// the staged and active range filters, and the county used for trend charts.
// A State is not safe for concurrent use; callers serialize access per session.
package selection

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/foodmap/internal/dataset"
)

var (
	// ErrNoYearData is returned when the selected year has no rows.
	ErrNoYearData = eris.New("selection: no data available for the selected year")
	// ErrNoCountyData is returned when a trend is requested for a county with no rows.
	ErrNoCountyData = eris.New("selection: no data for county")
	// ErrNoStagedFilter is returned by AddFilter when nothing has been staged.
	ErrNoStagedFilter = eris.New("selection: no staged filter")
	// ErrInvalidRange is returned when a staged range has min > max.
	ErrInvalidRange = eris.New("selection: invalid range")
)

// DefaultRanges are the initial slider positions per field.
var DefaultRanges = map[dataset.Field]dataset.Range{
	dataset.FieldFIR:             {Min: 10, Max: 20},
	dataset.FieldIncomePerCapita: {Min: 50000, Max: 200000},
	dataset.FieldFinalUR:         {Min: 5, Max: 10},
	dataset.FieldFinalCPM:        {Min: 5, Max: 7},
}

// Criterion is an inclusive range on one indicator field.
type Criterion struct {
	Field dataset.Field `json:"field"`
	Range dataset.Range `json:"range"`
}

// String renders the criterion the way the filter list shows it.
func (c Criterion) String() string {
	return fmt.Sprintf("%s: (%g, %g)", c.Field, c.Range.Min, c.Range.Max)
}

// State is the mutable selection of one session.
type State struct {
	year            int
	filters         map[dataset.Field]dataset.Range
	order           []dataset.Field
	staged          *Criterion
	county          string
	showFilteredMap bool
}

// New returns a state with the given year and county and the FIR default staged.
func New(year int, county string) *State {
	return &State{
		year:    year,
		filters: make(map[dataset.Field]dataset.Range),
		staged:  &Criterion{Field: dataset.FieldFIR, Range: DefaultRanges[dataset.FieldFIR]},
		county:  dataset.NormalizeFIPS(county),
	}
}

// Year returns the selected year.
func (s *State) Year() int { return s.year }

// County returns the selected county FIPS.
func (s *State) County() string { return s.county }

// ShowFilteredMap reports whether filters have been applied since the session began.
func (s *State) ShowFilteredMap() bool { return s.showFilteredMap }

// Staged returns the pending criterion, if any.
func (s *State) Staged() (Criterion, bool) {
	if s.staged == nil {
		return Criterion{}, false
	}
	return *s.staged, true
}

// SetYear replaces the selected year. Bounds are the caller's concern.
func (s *State) SetYear(y int) {
	s.year = y
}

// StageFilter sets the single pending criterion, replacing any previous one.
func (s *State) StageFilter(f dataset.Field, r dataset.Range) error {
	if !f.IsIndicator() {
		return eris.Wrapf(dataset.ErrUnknownField, "stage %q", f)
	}
	if !r.Valid() {
		return eris.Wrapf(ErrInvalidRange, "%s: %g > %g", f, r.Min, r.Max)
	}
	s.staged = &Criterion{Field: f, Range: r}
	return nil
}

// AddFilter commits the staged criterion unless its field is already active.
// The first range added for a field wins; later ones are ignored and
// reported with added=false.
func (s *State) AddFilter() (bool, error) {
	if s.staged == nil {
		return false, ErrNoStagedFilter
	}
	c := *s.staged
	if _, exists := s.filters[c.Field]; exists {
		return false, nil
	}
	s.filters[c.Field] = c.Range
	s.order = append(s.order, c.Field)
	return true, nil
}

// ClearFilters empties the active filters. The staged criterion is kept.
func (s *State) ClearFilters() {
	clear(s.filters)
	s.order = s.order[:0]
}

// Filters returns the active criteria in the order they were added.
func (s *State) Filters() []Criterion {
	out := make([]Criterion, 0, len(s.order))
	for _, f := range s.order {
		out = append(out, Criterion{Field: f, Range: s.filters[f]})
	}
	return out
}

// ApplyFilters returns the rows of baseYear narrowed by every active filter
// and turns on the filtered map.
func (s *State) ApplyFilters(t *dataset.Table, baseYear int) []dataset.Record {
	s.showFilteredMap = true
	return Filter(t.Year(baseYear), s.Filters())
}

// Filtered recomputes the applied view without changing state. ok is false
// until ApplyFilters has been called.
func (s *State) Filtered(t *dataset.Table, baseYear int) ([]dataset.Record, bool) {
	if !s.showFilteredMap {
		return nil, false
	}
	return Filter(t.Year(baseYear), s.Filters()), true
}

// SelectCounty sets the county used for trend charts. The code is normalized
// and not checked against the table; Trend reports a county with no rows.
func (s *State) SelectCounty(fips string) {
	s.county = dataset.NormalizeFIPS(fips)
}

// YearRows returns the rows of the selected year, or ErrNoYearData.
func (s *State) YearRows(t *dataset.Table) ([]dataset.Record, error) {
	rows := t.Year(s.year)
	if len(rows) == 0 {
		return nil, eris.Wrapf(ErrNoYearData, "year %d", s.year)
	}
	return rows, nil
}

// Snapshot is the serializable view of a State.
type Snapshot struct {
	Year            int         `json:"year"`
	Filters         []Criterion `json:"filters"`
	Staged          *Criterion  `json:"staged,omitempty"`
	County          string      `json:"county"`
	ShowFilteredMap bool        `json:"show_filtered_map"`
}

// Snapshot copies the state for display.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Year:            s.year,
		Filters:         s.Filters(),
		County:          s.county,
		ShowFilteredMap: s.showFilteredMap,
	}
	if c, ok := s.Staged(); ok {
		snap.Staged = &c
	}
	return snap
}

// Filter keeps rows whose value lies inside every criterion's inclusive range.
// The result does not depend on criterion order.
func Filter(rows []dataset.Record, criteria []Criterion) []dataset.Record {
	out := make([]dataset.Record, 0, len(rows))
	for _, r := range rows {
		if matches(r, criteria) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r dataset.Record, criteria []Criterion) bool {
	for _, c := range criteria {
		v, ok := r.Value(c.Field)
		if !ok || !c.Range.Contains(v) {
			return false
		}
	}
	return true
}
