// Package render turns table rows into map payloads and trend charts.
package render

import (
	"fmt"
	"sort"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/foodmap/internal/boundary"
	"github.com/sells-group/foodmap/internal/dataset"
)

// Primary map settings.
const (
	PrimaryField = dataset.FieldFIR
	PrimaryMin   = 0
	PrimaryMax   = 20
)

// Color modes of a map.
const (
	ModeContinuous = "continuous"
	ModeDiscrete   = "discrete"
)

// Map is a choropleth ready for a browser map library.
type Map struct {
	Title    string                     `json:"title"`
	Field    dataset.Field              `json:"field,omitempty"`
	Range    *dataset.Range             `json:"range,omitempty"`
	Mode     string                     `json:"mode"`
	Count    int                        `json:"count"`
	Features *geojson.FeatureCollection `json:"features"`
	Unmapped []string                   `json:"unmapped"`
}

// PrimaryTitle is the title of the primary map for a year.
func PrimaryTitle(year int) string {
	return fmt.Sprintf("Food Insecurity Rates By County (%d)", year)
}

// FilteredTitle is the title of the filtered map for the base year.
func FilteredTitle(baseYear int) string {
	return fmt.Sprintf("Map With Filters Applied (%d)", baseYear)
}

// Choropleth colors each row's county by field on the scale over r.
// Rows without an outline are listed in Unmapped.
func Choropleth(rows []dataset.Record, bounds *boundary.Collection, field dataset.Field, r dataset.Range, scale Scale, title string) *Map {
	m := &Map{
		Title: title,
		Field: field,
		Range: &r,
		Mode:  ModeContinuous,
	}
	m.Features, m.Unmapped = features(rows, bounds, func(rec dataset.Record) map[string]any {
		v, _ := rec.Value(field)
		return map[string]any{
			"value": v,
			"color": Hex(scale.At(v, r.Min, r.Max)),
			"label": FormatValue(field, v),
			"hover": HoverText(rec, field),
		}
	})
	m.Count = len(rows)
	return m
}

// Primary builds the FIR map of a year's rows.
func Primary(rows []dataset.Record, bounds *boundary.Collection, year int) *Map {
	return Choropleth(rows, bounds, PrimaryField, dataset.Range{Min: PrimaryMin, Max: PrimaryMax}, YlOrRd, PrimaryTitle(year))
}

// Filtered builds the single-color map of rows that passed the filters.
func Filtered(rows []dataset.Record, bounds *boundary.Collection, baseYear int) *Map {
	color := Hex(Highlight)
	m := &Map{
		Title: FilteredTitle(baseYear),
		Mode:  ModeDiscrete,
		Count: len(rows),
	}
	m.Features, m.Unmapped = features(rows, bounds, func(dataset.Record) map[string]any {
		return map[string]any{"color": color}
	})
	return m
}

func features(rows []dataset.Record, bounds *boundary.Collection, props func(dataset.Record) map[string]any) (*geojson.FeatureCollection, []string) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	unmapped := []string{}
	for _, rec := range rows {
		f, ok := bounds.Lookup(rec.FIPS)
		if !ok {
			unmapped = append(unmapped, rec.FIPS)
			continue
		}
		p := props(rec)
		p["fips"] = rec.FIPS
		p["county"] = rec.County
		p["year"] = rec.Year
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         rec.FIPS,
			Geometry:   f.Geometry,
			Properties: p,
		})
	}
	sort.Strings(unmapped)
	return fc, unmapped
}

// Boundaries returns every outline as a FeatureCollection with normalized ids.
func Boundaries(bounds *boundary.Collection) *geojson.FeatureCollection {
	all := bounds.Features()
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(all))}
	for _, f := range all {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       f.ID,
			Geometry: f.Geometry,
			Properties: map[string]any{
				"GEO_ID": f.ID,
				"raw_id": f.RawID,
				"name":   f.Name,
			},
		})
	}
	return fc
}
