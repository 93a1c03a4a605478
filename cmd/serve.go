package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/api"
	"github.com/sells-group/foodmap/internal/config"
	"github.com/sells-group/foodmap/internal/selection"
	"github.com/sells-group/foodmap/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		d, err := loadData(ctx, cfg)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildHandler(cfg, d),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("rows", d.Table.Len()),
			zap.Int("boundaries", d.Bounds.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildHandler wires the session store and API routes over the loaded data.
func buildHandler(c *config.Config, d *dashboardData) http.Handler {
	dash := c.Dashboard
	store := session.NewStore(
		c.Session.MaxEntries,
		time.Duration(c.Session.TTLMinutes)*time.Minute,
		func() *selection.State { return selection.New(dash.DefaultYear, dash.DefaultCounty) },
	)
	return api.New(d.Table, d.Bounds, store, api.Options{
		BaseYear:          dash.BaseYear,
		FilterFollowsYear: dash.FilterFollowsYear,
		MinYear:           dash.MinYear,
		MaxYear:           dash.MaxYear,
		CORSOrigins:       c.Server.CORSOrigins,
		ChartRate:         c.Server.ChartRate,
		ChartBurst:        c.Server.ChartBurst,
	}).Routes()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
