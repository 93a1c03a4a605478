package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/selection"
)

var rows = []dataset.Record{
	{FIPS: "1001", County: "Autauga, Alabama", Year: 2021, FIR: 13, IncomePerCapita: 50000, FinalUR: 5, FinalCPM: 4},
	{FIPS: "6037", County: "Los Angeles, California", Year: 2021, FIR: 14.25, IncomePerCapita: 80000, FinalUR: 7, FinalCPM: 5},
}

func TestWriteCSV_RoundTripsThroughLoader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, rows, nil))

	assert.Contains(t, buf.String(), "FIPS,County,Year,FIR,IncomePerCapita,FinalUR,FinalCPM\n")
	assert.Contains(t, buf.String(), `01001,"Autauga, Alabama",2021`)
	assert.Contains(t, buf.String(), "\n06037,")

	got, _, err := dataset.LoadCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteXLSX(t *testing.T) {
	filters := []selection.Criterion{{Field: dataset.FieldFIR, Range: dataset.Range{Min: 10, Max: 20}}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, rows, filters))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	counties := f.Sheet["Counties"]
	require.NotNil(t, counties)
	require.Len(t, counties.Rows, 3)
	assert.Equal(t, "FIPS", counties.Rows[0].Cells[0].String())
	assert.Equal(t, "06037", counties.Rows[2].Cells[0].String())
	fir, err := counties.Rows[2].Cells[3].Float()
	require.NoError(t, err)
	assert.InDelta(t, 14.25, fir, 1e-9)

	fs := f.Sheet["Filters"]
	require.NotNil(t, fs)
	require.Len(t, fs.Rows, 2)
	assert.Equal(t, "Food Insecurity Rate", fs.Rows[1].Cells[1].String())

	got, _, err := dataset.LoadXLSX(context.Background(), bytes.NewReader(buf.Bytes()), "Counties")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2021, got[1].Year)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", rows, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "FIPS,County,Year,FIR,IncomePerCapita,FinalUR,FinalCPM\n", buf.String())
}
