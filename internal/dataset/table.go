package dataset

import (
	"slices"
	"sort"
)

// Table is the immutable, indexed indicator table. It is built once at startup
// and shared by reference; none of its methods mutate it.
type Table struct {
	rows   []Record
	byYear map[int][]int
	byFIPS map[string][]int
	years  []int
}

// NewTable indexes rows by year and county. The slice is copied.
func NewTable(rows []Record) *Table {
	t := &Table{
		rows:   slices.Clone(rows),
		byYear: make(map[int][]int),
		byFIPS: make(map[string][]int),
	}
	for i, r := range t.rows {
		if _, ok := t.byYear[r.Year]; !ok {
			t.years = append(t.years, r.Year)
		}
		t.byYear[r.Year] = append(t.byYear[r.Year], i)
		t.byFIPS[r.FIPS] = append(t.byFIPS[r.FIPS], i)
	}
	sort.Ints(t.years)
	for _, idx := range t.byFIPS {
		sort.SliceStable(idx, func(a, b int) bool { return t.rows[idx[a]].Year < t.rows[idx[b]].Year })
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of all rows in load order.
func (t *Table) Rows() []Record { return slices.Clone(t.rows) }

// Years returns the distinct years present, ascending.
func (t *Table) Years() []int { return slices.Clone(t.years) }

// Counties returns the number of distinct FIPS codes.
func (t *Table) Counties() int { return len(t.byFIPS) }

// Year returns the rows for year y in load order.
func (t *Table) Year(y int) []Record {
	return t.pick(t.byYear[y])
}

// County returns the rows for a county ordered by year ascending.
// The code is normalized before lookup.
func (t *Table) County(fips string) []Record {
	return t.pick(t.byFIPS[NormalizeFIPS(fips)])
}

func (t *Table) pick(idx []int) []Record {
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}

// Bounds returns the min and max of f across the rows of year y.
// ok is false when the year has no rows.
func (t *Table) Bounds(f Field, y int) (Range, bool) {
	return BoundsOf(t.Year(y), f)
}

// BoundsOf returns the min and max of f across rows.
func BoundsOf(rows []Record, f Field) (Range, bool) {
	if len(rows) == 0 {
		return Range{}, false
	}
	first, _ := rows[0].Value(f)
	r := Range{Min: first, Max: first}
	for _, rec := range rows[1:] {
		v, _ := rec.Value(f)
		r.Min = min(r.Min, v)
		r.Max = max(r.Max, v)
	}
	return r, true
}

// Rank returns the rows of year y sorted by f descending. Ties keep FIPS order.
// limit <= 0 returns every row.
func (t *Table) Rank(f Field, y, limit int) []Record {
	rows := t.Year(y)
	sort.SliceStable(rows, func(a, b int) bool {
		va, _ := rows[a].Value(f)
		vb, _ := rows[b].Value(f)
		if va != vb {
			return va > vb
		}
		return rows[a].FIPS < rows[b].FIPS
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
