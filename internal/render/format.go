package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/foodmap/internal/dataset"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatValue renders an indicator value with its unit: "13.00%", "$50,000.00".
func FormatValue(f dataset.Field, v float64) string {
	switch f.Unit() {
	case "%":
		return printer.Sprintf("%.2f%%", v)
	case "$":
		return printer.Sprintf("$%.2f", v)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// HoverText is the tooltip of a county on the primary map.
func HoverText(r dataset.Record, f dataset.Field) string {
	v, _ := r.Value(f)
	return printer.Sprintf("County: %s\nCounty FIPS: %s\n%s: %s", r.County, r.FIPS, f.Label(), FormatValue(f, v))
}

// RankLine renders one ranking entry, "Autauga, Alabama: 13.00%".
func RankLine(r dataset.Record, f dataset.Field) string {
	v, _ := r.Value(f)
	return r.County + ": " + FormatValue(f, v)
}
