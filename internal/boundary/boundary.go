// Package boundary loads county outlines and joins them to indicator rows by
// normalized FIPS code.
package boundary

import (
	"sort"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/dataset"
)

// Feature is one county outline.
type Feature struct {
	ID       string // normalized join key
	RawID    string // identifier as found in the source
	Name     string
	Geometry geom.T
}

// Collection is an immutable set of features keyed by normalized ID.
type Collection struct {
	features []Feature
	byID     map[string]int
}

// NormalizeGeoID reduces a census GEO_ID such as "0500000US01001" to the
// row join key "1001".
func NormalizeGeoID(raw string) string {
	return dataset.NormalizeFIPS(raw)
}

// NewCollection indexes features. Features without an ID or geometry are
// skipped; on duplicate IDs the first one wins.
func NewCollection(features []Feature) *Collection {
	c := &Collection{byID: make(map[string]int, len(features))}
	for _, f := range features {
		if f.ID == "" || f.Geometry == nil {
			continue
		}
		if _, dup := c.byID[f.ID]; dup {
			zap.L().Warn("boundary: duplicate feature id", zap.String("id", f.ID), zap.String("raw_id", f.RawID))
			continue
		}
		c.byID[f.ID] = len(c.features)
		c.features = append(c.features, f)
	}
	return c
}

// Len returns the number of features.
func (c *Collection) Len() int { return len(c.features) }

// Features returns the features in source order.
func (c *Collection) Features() []Feature {
	out := make([]Feature, len(c.features))
	copy(out, c.features)
	return out
}

// Lookup returns the feature for a county code. The code is normalized first.
func (c *Collection) Lookup(fips string) (Feature, bool) {
	i, ok := c.byID[dataset.NormalizeFIPS(fips)]
	if !ok {
		return Feature{}, false
	}
	return c.features[i], true
}

// IDs returns the normalized IDs, sorted.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// JoinResult describes how a set of rows lines up with the outlines.
type JoinResult struct {
	Matched  []string `json:"matched"`  // FIPS with both rows and an outline
	Unmapped []string `json:"unmapped"` // FIPS with rows but no outline
	NoData   []string `json:"no_data"`  // outline IDs with no rows
}

// Join matches rows to features by FIPS. Each list is sorted and de-duplicated.
func (c *Collection) Join(rows []dataset.Record) JoinResult {
	var res JoinResult
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if seen[r.FIPS] {
			continue
		}
		seen[r.FIPS] = true
		if _, ok := c.byID[r.FIPS]; ok {
			res.Matched = append(res.Matched, r.FIPS)
		} else {
			res.Unmapped = append(res.Unmapped, r.FIPS)
		}
	}
	for _, f := range c.features {
		if !seen[f.ID] {
			res.NoData = append(res.NoData, f.ID)
		}
	}
	sort.Strings(res.Matched)
	sort.Strings(res.Unmapped)
	sort.Strings(res.NoData)
	return res
}
