package boundary

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadShapefile reads TIGER/Line county outlines from a .shp file or a .zip
// archive holding one. Archives are extracted under tempDir.
func LoadShapefile(path, tempDir string) (*Collection, error) {
	shpPath := path
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return nil, eris.Wrap(err, "boundary: create temp dir")
		}
		extractDir, err := os.MkdirTemp(tempDir, "counties-")
		if err != nil {
			return nil, eris.Wrap(err, "boundary: create extract dir")
		}
		defer os.RemoveAll(extractDir) //nolint:errcheck

		if err := extractZIP(path, extractDir); err != nil {
			return nil, eris.Wrap(err, "boundary: extract shapefile zip")
		}
		shpPath, err = findFileByExt(extractDir, ".shp")
		if err != nil {
			return nil, eris.Wrap(err, "boundary: find .shp file")
		}
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	idIdx := -1
	for _, name := range []string{"GEOID", "GEO_ID", "FIPS"} {
		if idIdx = fieldIndex(reader, name); idIdx >= 0 {
			break
		}
	}
	if idIdx < 0 {
		return nil, eris.New("boundary: shapefile has no GEOID field")
	}
	nameIdx := fieldIndex(reader, "NAME")

	var features []Feature
	for reader.Next() {
		n, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			continue
		}
		raw := attribute(reader, idIdx)
		f := Feature{ID: NormalizeGeoID(raw), RawID: raw, Geometry: g}
		if nameIdx >= 0 {
			f.Name = attribute(reader, nameIdx)
		}
		if f.ID == "" {
			zap.L().Debug("boundary: skipping shape without id", zap.Int("shape", n))
			continue
		}
		features = append(features, f)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "boundary: read shapefile")
	}

	c := NewCollection(features)
	if c.Len() == 0 {
		return nil, eris.New("boundary: shapefile has no polygons")
	}
	return c, nil
}

// shapeToGeom converts a shapefile polygon to a MultiPolygon, one polygon per part.
func shapeToGeom(s shp.Shape) geom.T {
	p, ok := s.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// extractZIP extracts a ZIP archive flat into destDir.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		out, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = out.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}

// attribute reads a DBF text field of the current shape. Fields are padded
// with spaces or NULs depending on the writer.
func attribute(reader *shp.Reader, idx int) string {
	return strings.Trim(reader.Attribute(idx), " \x00")
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
