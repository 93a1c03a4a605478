package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/export"
	"github.com/sells-group/foodmap/internal/render"
	"github.com/sells-group/foodmap/internal/selection"
	"github.com/sells-group/foodmap/internal/session"
)

const noYearData = "No data available for the selected year."

type sessionResponse struct {
	ID    string             `json:"id"`
	State selection.Snapshot `json:"state"`
}

// baseYear is the year filters are applied against.
func (s *Server) baseYear(st *selection.State) int {
	if s.opts.FilterFollowsYear {
		return st.Year()
	}
	return s.opts.BaseYear
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	var resp sessionResponse
	_ = sess.Do(func(st *selection.State) error {
		resp = sessionResponse{ID: sess.ID, State: st.Snapshot()}
		return nil
	})
	s.log.Debug("session created", zap.String("session", sess.ID))
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: st.Snapshot()})
			return nil
		})
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		s.sessions.Delete(sess.ID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleSetYear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year *int `json:"year"`
	}
	if err := decode(r, &req); err != nil || req.Year == nil {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	// The year control is the only place bounds are enforced.
	if *req.Year < s.opts.MinYear || *req.Year > s.opts.MaxYear {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("year must be between %d and %d", s.opts.MinYear, s.opts.MaxYear))
		return
	}
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			st.SetYear(*req.Year)
			writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: st.Snapshot()})
			return nil
		})
	})
}

func (s *Server) handleStageFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string   `json:"field"`
		Min   *float64 `json:"min"`
		Max   *float64 `json:"max"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, err := dataset.ParseField(req.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rng := selection.DefaultRanges[f]
	if req.Min != nil {
		rng.Min = *req.Min
	}
	if req.Max != nil {
		rng.Max = *req.Max
	}

	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			if err := st.StageFilter(f, rng); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return nil
			}
			resp := map[string]any{"id": sess.ID, "state": st.Snapshot()}
			if b, ok := s.table.Bounds(f, st.Year()); ok {
				resp["slider"] = b
			}
			writeJSON(w, http.StatusOK, resp)
			return nil
		})
	})
}

func (s *Server) handleAddFilter(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			added, err := st.AddFilter()
			if errors.Is(err, selection.ErrNoStagedFilter) {
				writeError(w, http.StatusBadRequest, "no filter staged")
				return nil
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": sess.ID, "added": added, "state": st.Snapshot()})
			return nil
		})
	})
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			st.ClearFilters()
			writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: st.Snapshot()})
			return nil
		})
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			base := s.baseYear(st)
			rows := st.ApplyFilters(s.table, base)
			writeJSON(w, http.StatusOK, render.Filtered(rows, s.bounds, base))
			return nil
		})
	})
}

func (s *Server) handleFiltered(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			base := s.baseYear(st)
			rows, ok := st.Filtered(s.table, base)
			if !ok {
				writeJSON(w, http.StatusOK, map[string]any{"show_filtered_map": false})
				return nil
			}
			writeJSON(w, http.StatusOK, render.Filtered(rows, s.bounds, base))
			return nil
		})
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			rows, err := st.YearRows(s.table)
			if errors.Is(err, selection.ErrNoYearData) {
				writeJSON(w, http.StatusOK, map[string]any{"year": st.Year(), "warning": noYearData})
				return nil
			}
			writeJSON(w, http.StatusOK, render.Primary(rows, s.bounds, st.Year()))
			return nil
		})
	})
}

func (s *Server) handleSelectCounty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FIPS string `json:"fips"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.withSession(w, r, func(sess *session.Session) {
		_ = sess.Do(func(st *selection.State) error {
			st.SelectCounty(req.FIPS)
			resp := map[string]any{"id": sess.ID, "state": st.Snapshot()}
			if rows := s.table.County(st.County()); len(rows) > 0 {
				resp["county_name"] = rows[0].County
			}
			writeJSON(w, http.StatusOK, resp)
			return nil
		})
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, y := dataset.FieldYear, dataset.FieldFIR
	var err error
	if raw := q.Get("x"); raw != "" {
		if x, err = dataset.ParseAxis(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if raw := q.Get("y"); raw != "" {
		if y, err = dataset.ParseField(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != render.FormatPNG && format != render.FormatSVG {
		writeError(w, http.StatusBadRequest, "format must be json, png or svg")
		return
	}

	s.withSession(w, r, func(sess *session.Session) {
		var series selection.Series
		err := sess.Do(func(st *selection.State) error {
			var terr error
			series, terr = st.TrendFor(s.table, x, y)
			return terr
		})
		if errors.Is(err, selection.ErrNoCountyData) {
			writeError(w, http.StatusNotFound, "No data for the selected county.")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if format == "json" {
			writeJSON(w, http.StatusOK, map[string]any{"title": series.Title(), "series": series})
			return
		}
		img, err := render.TrendChart(series, format, s.opts.Chart)
		if err != nil {
			s.log.Error("trend chart failed", zap.String("session", sess.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "chart rendering failed")
			return
		}
		w.Header().Set("Content-Type", render.ContentType(format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatXLSX
	}
	if format != export.FormatXLSX && format != export.FormatCSV {
		writeError(w, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}

	s.withSession(w, r, func(sess *session.Session) {
		var (
			rows    []dataset.Record
			filters []selection.Criterion
			base    int
		)
		_ = sess.Do(func(st *selection.State) error {
			base = s.baseYear(st)
			filters = st.Filters()
			rows = selection.Filter(s.table.Year(base), filters)
			return nil
		})

		w.Header().Set("Content-Type", export.ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="foodmap-%d.%s"`, base, format))
		if err := export.Write(w, format, rows, filters); err != nil {
			// Headers are gone; all that is left is to log.
			s.log.Error("export failed", zap.String("session", sess.ID), zap.Error(err))
		}
	})
}
