// Package api serves the dashboard's data plane over HTTP: per-session
// selection state, map payloads, trend charts, rankings and exports.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/foodmap/internal/boundary"
	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/render"
	"github.com/sells-group/foodmap/internal/session"
)

// Options configures the API.
type Options struct {
	BaseYear          int
	FilterFollowsYear bool
	MinYear           int
	MaxYear           int
	CORSOrigins       []string
	ChartRate         float64 // trend renders per second; <= 0 disables limiting
	ChartBurst        int
	Chart             render.ChartOptions
}

// Server holds the shared, read-only data and the session store.
type Server struct {
	table    *dataset.Table
	bounds   *boundary.Collection
	sessions *session.Store
	opts     Options
	charts   *rate.Limiter
	log      *zap.Logger
}

// New creates a Server.
func New(table *dataset.Table, bounds *boundary.Collection, sessions *session.Store, opts Options) *Server {
	if opts.Chart.Width == 0 || opts.Chart.Height == 0 {
		opts.Chart = render.DefaultChartOptions
	}
	s := &Server{
		table:    table,
		bounds:   bounds,
		sessions: sessions,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "api")),
	}
	if opts.ChartRate > 0 {
		burst := opts.ChartBurst
		if burst < 1 {
			burst = 1
		}
		s.charts = rate.NewLimiter(rate.Limit(opts.ChartRate), burst)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Get("/boundaries", s.handleBoundaries)
		r.Get("/rankings", s.handleRankings)
		r.Get("/fields/{field}/bounds", s.handleFieldBounds)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/year", s.handleSetYear)
			r.Put("/staged", s.handleStageFilter)
			r.Post("/filters", s.handleAddFilter)
			r.Delete("/filters", s.handleClearFilters)
			r.Post("/apply", s.handleApply)
			r.Get("/map", s.handleMap)
			r.Get("/filtered", s.handleFiltered)
			r.Put("/county", s.handleSelectCounty)
			r.With(s.limitCharts).Get("/trend", s.handleTrend)
			r.Get("/export", s.handleExport)
		})
	})
	return r
}

// requestLogger writes one structured access log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// limitCharts rejects trend renders beyond the configured rate.
func (s *Server) limitCharts(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.charts != nil && !s.charts.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many chart requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
