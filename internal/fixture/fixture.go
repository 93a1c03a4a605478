// Package fixture provides small county datasets for tests.
package fixture

import (
	"fmt"
	"strings"
)

type county struct {
	fips, name            string
	fir, ipc, ur, cpm     float64 // 2021 values
	dFIR, dIPC, dUR, dCPM float64 // change per year going back from 2021
}

var counties = []county{
	{"01001", "Autauga, Alabama", 13.0, 50000, 5.0, 4.0, 0.2, -1500, 0.3, -0.1},
	{"01003", "Baldwin, Alabama", 11.0, 62000, 4.0, 4.2, 0.1, -2000, 0.3, -0.1},
	{"06037", "Los Angeles, California", 14.0, 80000, 7.0, 5.0, 0.2, -3000, 0.4, -0.15},
	{"48201", "Harris, Texas", 17.0, 55000, 8.0, 4.1, 0.1, -1000, -0.1, -0.1},
}

// Years covered by CountyCSV.
const (
	FirstYear = 2011
	LastYear  = 2021
)

// CountyCSV returns a CurrentData-style CSV: four counties over 2011-2021 with
// zero-padded FIPS, plus two 2021 rows carrying the -1 sentinel.
func CountyCSV() string {
	var sb strings.Builder
	sb.WriteString("FIPS,County,Year,FIR,IncomePerCapita,FinalUR,FinalCPM\n")
	for _, c := range counties {
		for y := FirstYear; y <= LastYear; y++ {
			k := float64(LastYear - y)
			fmt.Fprintf(&sb, "%s,%q,%d,%g,%g,%g,%g\n", c.fips, c.name, y,
				c.fir+c.dFIR*k, c.ipc+c.dIPC*k, c.ur+c.dUR*k, c.cpm+c.dCPM*k)
		}
	}
	sb.WriteString("02013,\"Aleutians East, Alaska\",2021,-1,41000,3.1,5.5\n")
	sb.WriteString("02016,\"Aleutians West, Alaska\",2021,9.5,-1,2.9,5.6\n")
	return sb.String()
}

// CountyGeoJSON returns a FeatureCollection with census-style GEO_IDs for the
// four data counties plus Aleutians East, which has no usable rows.
func CountyGeoJSON() string {
	ids := []struct{ geoID, name string }{
		{"0500000US01001", "Autauga"},
		{"0500000US01003", "Baldwin"},
		{"0500000US06037", "Los Angeles"},
		{"0500000US48201", "Harris"},
		{"0500000US02013", "Aleutians East"},
	}
	var features []string
	for i, id := range ids {
		x := -100.0 + float64(i)
		features = append(features, fmt.Sprintf(
			`{"type":"Feature","properties":{"GEO_ID":%q,"NAME":%q},"geometry":{"type":"Polygon","coordinates":[[[%g,30],[%g,30],[%g,31],[%g,31],[%g,30]]]}}`,
			id.geoID, id.name, x, x+0.5, x+0.5, x, x))
	}
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}
