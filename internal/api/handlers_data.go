package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/render"
	"github.com/sells-group/foodmap/internal/selection"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fieldInfo struct {
	Code         dataset.Field  `json:"code"`
	Label        string         `json:"label"`
	Unit         string         `json:"unit,omitempty"`
	DefaultRange *dataset.Range `json:"default_range,omitempty"`
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	fields := make([]fieldInfo, 0, len(dataset.Indicators))
	for _, f := range dataset.Indicators {
		r := selection.DefaultRanges[f]
		fields = append(fields, fieldInfo{Code: f, Label: f.Label(), Unit: f.Unit(), DefaultRange: &r})
	}
	axes := append(append([]fieldInfo(nil), fields...), fieldInfo{Code: dataset.FieldYear, Label: dataset.FieldYear.Label()})

	writeJSON(w, http.StatusOK, map[string]any{
		"years":               s.table.Years(),
		"min_year":            s.opts.MinYear,
		"max_year":            s.opts.MaxYear,
		"base_year":           s.opts.BaseYear,
		"filter_follows_year": s.opts.FilterFollowsYear,
		"fields":              fields,
		"x_axes":              axes,
		"counties":            s.table.Counties(),
		"rows":                s.table.Len(),
		"boundaries":          s.bounds.Len(),
		"sessions":            s.sessions.Stats(),
	})
}

func (s *Server) handleBoundaries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.Boundaries(s.bounds))
}

// yearParam reads ?year=, falling back to def.
func yearParam(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return def, true
	}
	y, err := strconv.Atoi(raw)
	return y, err == nil
}

func (s *Server) handleFieldBounds(w http.ResponseWriter, r *http.Request) {
	f, err := dataset.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	year, ok := yearParam(r, s.opts.BaseYear)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	b, ok := s.table.Bounds(f, year)
	if !ok {
		writeError(w, http.StatusNotFound, "No data available for the selected year.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field": f,
		"label": f.Label(),
		"year":  year,
		"min":   b.Min,
		"max":   b.Max,
	})
}

type rankEntry struct {
	Rank   int     `json:"rank"`
	FIPS   string  `json:"fips"`
	County string  `json:"county"`
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := dataset.FieldFIR
	if raw := q.Get("field"); raw != "" {
		f, err := dataset.ParseField(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		field = f
	}
	year, ok := yearParam(r, s.opts.BaseYear)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows := s.table.Rank(field, year, limit)
	out := make([]rankEntry, len(rows))
	for i, rec := range rows {
		v, _ := rec.Value(field)
		out[i] = rankEntry{Rank: i + 1, FIPS: rec.FIPS, County: rec.County, Value: v, Label: render.RankLine(rec, field)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":    field,
		"year":     year,
		"counties": out,
	})
}
