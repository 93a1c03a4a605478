package boundary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/fixture"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func square() geom.T {
	return geom.NewPolygonFlat(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}, []int{10})
}

func TestNormalizeGeoID(t *testing.T) {
	assert.Equal(t, "1001", NormalizeGeoID("0500000US01001"))
	assert.Equal(t, "48201", NormalizeGeoID("0500000US48201"))
	assert.Equal(t, "1001", NormalizeGeoID("01001"))
}

func TestNewCollection_SkipsAndDedupes(t *testing.T) {
	c := NewCollection([]Feature{
		{ID: "1001", RawID: "0500000US01001", Name: "first", Geometry: square()},
		{ID: "1001", RawID: "01001", Name: "second", Geometry: square()},
		{ID: "", Name: "no id", Geometry: square()},
		{ID: "1003", Name: "no geometry"},
	})
	assert.Equal(t, 1, c.Len())
	f, ok := c.Lookup("01001")
	require.True(t, ok)
	assert.Equal(t, "first", f.Name)
	_, ok = c.Lookup("1003")
	assert.False(t, ok)
}

func TestLoadGeoJSON_Fixture(t *testing.T) {
	c, err := LoadGeoJSON(strings.NewReader(fixture.CountyGeoJSON()))
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []string{"1001", "1003", "2013", "48201", "6037"}, c.IDs())

	f, ok := c.Lookup("1001")
	require.True(t, ok)
	assert.Equal(t, "0500000US01001", f.RawID)
	assert.Equal(t, "Autauga", f.Name)
	_, isPoly := f.Geometry.(*geom.Polygon)
	assert.True(t, isPoly)
}

func TestLoadGeoJSON_FallbackIDs(t *testing.T) {
	src := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"GEOID":"06037"},"geometry":{"type":"Point","coordinates":[-118,34]}},
		{"type":"Feature","properties":{"FIPS":48201},"geometry":{"type":"Point","coordinates":[-95,29]}}
	]}`
	c, err := LoadGeoJSON(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"48201", "6037"}, c.IDs())
}

func TestLoadGeoJSON_Errors(t *testing.T) {
	_, err := LoadGeoJSON(strings.NewReader("not json"))
	assert.Error(t, err)

	_, err = LoadGeoJSON(strings.NewReader(`{"type":"FeatureCollection","features":[]}`))
	assert.Error(t, err)
}

func TestJoin(t *testing.T) {
	c, err := LoadGeoJSON(strings.NewReader(fixture.CountyGeoJSON()))
	require.NoError(t, err)

	res := c.Join([]dataset.Record{
		{FIPS: "1001", Year: 2021},
		{FIPS: "1001", Year: 2020},
		{FIPS: "6037", Year: 2021},
		{FIPS: "99999", Year: 2021},
	})
	assert.Equal(t, []string{"1001", "6037"}, res.Matched)
	assert.Equal(t, []string{"99999"}, res.Unmapped)
	assert.Equal(t, []string{"1003", "2013", "48201"}, res.NoData)
}
