package boundary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// idProperties are tried in order for the feature identifier.
var idProperties = []string{"GEO_ID", "GEOID", "FIPS"}

// nameProperties are tried in order for the display name.
var nameProperties = []string{"NAME", "NAMELSAD"}

// LoadGeoJSON reads a FeatureCollection whose features carry a GEO_ID
// (or GEOID/FIPS) property.
func LoadGeoJSON(r io.Reader) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: read geojson")
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "boundary: decode geojson")
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		raw := property(f.Properties, idProperties)
		if raw == "" {
			raw = f.ID
		}
		features = append(features, Feature{
			ID:       NormalizeGeoID(raw),
			RawID:    raw,
			Name:     property(f.Properties, nameProperties),
			Geometry: f.Geometry,
		})
	}
	c := NewCollection(features)
	if c.Len() == 0 {
		return nil, eris.New("boundary: geojson has no identifiable features")
	}
	return c, nil
}

func property(props map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = fmt.Sprintf("%.0f", t)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
