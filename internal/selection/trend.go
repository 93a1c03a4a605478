package selection

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/foodmap/internal/dataset"
)

// Point is one year of a county trend.
type Point struct {
	Year int     `json:"year"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Series is the input of a county line chart.
type Series struct {
	FIPS   string        `json:"fips"`
	County string        `json:"county"`
	X      dataset.Field `json:"x"`
	Y      dataset.Field `json:"y"`
	Points []Point       `json:"points"`
	YRange dataset.Range `json:"y_range"`
}

// Title returns the chart title, "<County> | <x> | <y>".
func (s Series) Title() string {
	return s.County + " | " + string(s.X) + " | " + string(s.Y)
}

// Trend builds the x/y series for a county, one point per year in ascending
// year order. y must be an indicator; x may also be Year. The y range is
// padded to [0.9*min, 1.1*max].
func Trend(t *dataset.Table, fips string, x, y dataset.Field) (Series, error) {
	if x != dataset.FieldYear && !x.IsIndicator() {
		return Series{}, eris.Wrapf(dataset.ErrUnknownField, "x axis %q", x)
	}
	if !y.IsIndicator() {
		return Series{}, eris.Wrapf(dataset.ErrUnknownField, "y axis %q", y)
	}

	rows := t.County(fips)
	if len(rows) == 0 {
		return Series{}, eris.Wrapf(ErrNoCountyData, "fips %q", fips)
	}

	s := Series{
		FIPS:   rows[0].FIPS,
		County: rows[0].County,
		X:      x,
		Y:      y,
		Points: make([]Point, len(rows)),
	}
	for i, r := range rows {
		xv, _ := r.Value(x)
		yv, _ := r.Value(y)
		s.Points[i] = Point{Year: r.Year, X: xv, Y: yv}
	}
	b, _ := dataset.BoundsOf(rows, y)
	s.YRange = dataset.Range{Min: b.Min * 0.9, Max: b.Max * 1.1}
	return s, nil
}

// TrendFor builds the trend of the selected county.
func (s *State) TrendFor(t *dataset.Table, x, y dataset.Field) (Series, error) {
	return Trend(t, s.county, x, y)
}
