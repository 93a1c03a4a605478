package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/foodmap/internal/dataset"
)

func TestTrend_EndToEnd(t *testing.T) {
	tbl := loadTable(t)
	s := New(2021, "1001")

	rows, err := s.YearRows(tbl)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, 2021, r.Year)
	}

	s.SelectCounty("1001")
	series, err := s.TrendFor(tbl, dataset.FieldYear, dataset.FieldIncomePerCapita)
	require.NoError(t, err)

	require.Len(t, series.Points, 11)
	for i, p := range series.Points {
		assert.Equal(t, 2011+i, p.Year)
		assert.Equal(t, float64(p.Year), p.X)
	}
	assert.InDelta(t, 35000.0, series.Points[0].Y, 1e-6)
	assert.InDelta(t, 50000.0, series.Points[10].Y, 1e-6)
	assert.Equal(t, "Autauga, Alabama | Year | IncomePerCapita", series.Title())
	assert.InDelta(t, 35000*0.9, series.YRange.Min, 1e-6)
	assert.InDelta(t, 50000*1.1, series.YRange.Max, 1e-6)
}

func TestTrend_IndicatorXAxis(t *testing.T) {
	tbl := loadTable(t)
	series, err := Trend(tbl, "06037", dataset.FieldFinalUR, dataset.FieldFIR)
	require.NoError(t, err)

	require.Len(t, series.Points, 11)
	last := series.Points[10]
	assert.Equal(t, 2021, last.Year)
	assert.InDelta(t, 7.0, last.X, 1e-9)
	assert.InDelta(t, 14.0, last.Y, 1e-9)
	assert.Equal(t, "6037", series.FIPS)
}

func TestTrend_UnknownCounty(t *testing.T) {
	tbl := loadTable(t)
	s := New(2021, "1001")
	s.SelectCounty("99999")

	_, err := s.TrendFor(tbl, dataset.FieldYear, dataset.FieldFIR)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCountyData))

	// Blank input normalizes to "" and is also a no-data condition.
	s.SelectCounty("  ")
	_, err = s.TrendFor(tbl, dataset.FieldYear, dataset.FieldFIR)
	assert.True(t, errors.Is(err, ErrNoCountyData))
}

func TestTrend_BadAxes(t *testing.T) {
	tbl := loadTable(t)

	_, err := Trend(tbl, "1001", dataset.FieldYear, dataset.FieldYear)
	assert.True(t, errors.Is(err, dataset.ErrUnknownField))

	_, err = Trend(tbl, "1001", dataset.Field("Population"), dataset.FieldFIR)
	assert.True(t, errors.Is(err, dataset.ErrUnknownField))
}
