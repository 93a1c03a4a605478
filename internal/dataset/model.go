// Package dataset loads and indexes the county-year indicator table.
package dataset

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Sentinel marks a missing measurement in the source extracts.
const Sentinel = -1

// ErrUnknownField is returned when a field name or label is not recognized.
var ErrUnknownField = eris.New("dataset: unknown field")

// Field names a numeric column of a CountyRecord.
type Field string

// Indicator fields. FieldYear is only valid as a chart axis.
const (
	FieldFIR             Field = "FIR"
	FieldIncomePerCapita Field = "IncomePerCapita"
	FieldFinalUR         Field = "FinalUR"
	FieldFinalCPM        Field = "FinalCPM"
	FieldYear            Field = "Year"
)

// Indicators lists the filterable fields in display order.
var Indicators = []Field{FieldFIR, FieldIncomePerCapita, FieldFinalUR, FieldFinalCPM}

var fieldLabels = map[Field]string{
	FieldFIR:             "Food Insecurity Rate",
	FieldIncomePerCapita: "Income Per Capita",
	FieldFinalUR:         "Unemployment Rate",
	FieldFinalCPM:        "Cost Per Meal",
	FieldYear:            "Year",
}

var fieldUnits = map[Field]string{
	FieldFIR:             "%",
	FieldIncomePerCapita: "$",
	FieldFinalUR:         "%",
	FieldFinalCPM:        "$",
}

// Label returns the human-readable name shown in selectors.
func (f Field) Label() string { return fieldLabels[f] }

// Unit returns "%" or "$" for indicators, "" otherwise.
func (f Field) Unit() string { return fieldUnits[f] }

// IsIndicator reports whether f is one of the filterable indicator fields.
func (f Field) IsIndicator() bool {
	_, ok := fieldUnits[f]
	return ok
}

// ParseAxis resolves a field code or label, case-insensitively. Year is accepted.
func ParseAxis(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for f, label := range fieldLabels {
		if strings.EqualFold(s, string(f)) || strings.EqualFold(s, label) {
			return f, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownField, "%q", s)
}

// ParseField resolves an indicator field code or label. Year is rejected.
func ParseField(s string) (Field, error) {
	f, err := ParseAxis(s)
	if err != nil {
		return "", err
	}
	if !f.IsIndicator() {
		return "", eris.Wrapf(ErrUnknownField, "%q is not an indicator", s)
	}
	return f, nil
}

// Record is one county-year row.
type Record struct {
	FIPS            string  `json:"fips"`
	County          string  `json:"county"`
	Year            int     `json:"year"`
	FIR             float64 `json:"fir"`
	IncomePerCapita float64 `json:"income_per_capita"`
	FinalUR         float64 `json:"final_ur"`
	FinalCPM        float64 `json:"final_cpm"`
}

// Value returns the numeric value of f for the record.
func (r Record) Value(f Field) (float64, bool) {
	switch f {
	case FieldFIR:
		return r.FIR, true
	case FieldIncomePerCapita:
		return r.IncomePerCapita, true
	case FieldFinalUR:
		return r.FinalUR, true
	case FieldFinalCPM:
		return r.FinalCPM, true
	case FieldYear:
		return float64(r.Year), true
	default:
		return 0, false
	}
}

// HasSentinel reports whether any field of the record carries the missing-value marker.
func (r Record) HasSentinel() bool {
	if r.FIPS == "-1" || r.County == "-1" || r.Year == Sentinel {
		return true
	}
	for _, f := range Indicators {
		if v, _ := r.Value(f); v == Sentinel {
			return true
		}
	}
	return false
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Valid reports whether Min <= Max.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}
