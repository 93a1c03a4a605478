// Package export writes filtered county rows as XLSX or CSV downloads.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/selection"
)

// Formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write encodes rows in the given format.
func Write(w io.Writer, format string, rows []dataset.Record, filters []selection.Criterion) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, rows, filters)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

// WriteCSV writes rows under the source column header. FIPS codes are
// written zero-padded to five digits, as in the source files.
func WriteCSV(w io.Writer, rows []dataset.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dataset.Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range rows {
		if err := cw.Write(cells(r)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s/%d", r.FIPS, r.Year)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func cells(r dataset.Record) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{dataset.PadFIPS(r.FIPS), r.County, strconv.Itoa(r.Year), f(r.FIR), f(r.IncomePerCapita), f(r.FinalUR), f(r.FinalCPM)}
}

// WriteXLSX writes a workbook with a "Counties" sheet of rows and a "Filters"
// sheet listing the criteria that produced them.
func WriteXLSX(w io.Writer, rows []dataset.Record, filters []selection.Criterion) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Counties")
	if err != nil {
		return eris.Wrap(err, "export: add counties sheet")
	}
	header := sheet.AddRow()
	for _, c := range dataset.Columns {
		header.AddCell().SetString(c)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(dataset.PadFIPS(r.FIPS))
		row.AddCell().SetString(r.County)
		row.AddCell().SetInt(r.Year)
		for _, fld := range dataset.Indicators {
			v, _ := r.Value(fld)
			row.AddCell().SetFloat(v)
		}
	}

	fs, err := f.AddSheet("Filters")
	if err != nil {
		return eris.Wrap(err, "export: add filters sheet")
	}
	fh := fs.AddRow()
	for _, h := range []string{"Field", "Label", "Min", "Max"} {
		fh.AddCell().SetString(h)
	}
	for _, c := range filters {
		row := fs.AddRow()
		row.AddCell().SetString(string(c.Field))
		row.AddCell().SetString(c.Field.Label())
		row.AddCell().SetFloat(c.Range.Min)
		row.AddCell().SetFloat(c.Range.Max)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
