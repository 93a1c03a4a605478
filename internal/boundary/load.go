package boundary

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/fetcher"
)

// Load reads county outlines from a local path or an http(s)/ftp URL.
// GeoJSON (.geojson, .json) and TIGER shapefiles (.shp, .zip) are supported.
// Remote shapefiles are downloaded into tempDir first.
func Load(ctx context.Context, src, tempDir string, opts fetcher.Options) (*Collection, error) {
	log := zap.L().With(zap.String("component", "boundary.loader"), zap.String("source", src))

	var (
		c   *Collection
		err error
	)
	switch ext := strings.ToLower(fetcher.Ext(src)); ext {
	case ".geojson", ".json":
		rc, oerr := fetcher.Open(ctx, src, opts)
		if oerr != nil {
			return nil, eris.Wrap(oerr, "boundary: open geojson")
		}
		defer rc.Close() //nolint:errcheck
		c, err = LoadGeoJSON(rc)

	case ".shp", ".zip":
		local, lerr := fetcher.Localize(ctx, src, tempDir, opts)
		if lerr != nil {
			return nil, eris.Wrap(lerr, "boundary: fetch shapefile")
		}
		c, err = LoadShapefile(local, tempDir)

	default:
		return nil, eris.Errorf("boundary: unsupported boundary file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	log.Info("boundaries loaded", zap.Int("features", c.Len()))
	return c, nil
}
