package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/foodmap/internal/boundary"
	"github.com/sells-group/foodmap/internal/config"
	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/fetcher"
)

// dashboardData is everything loaded once at startup and shared read-only.
type dashboardData struct {
	Table  *dataset.Table
	Stats  dataset.LoadStats
	Bounds *boundary.Collection
}

func fetchOptions() fetcher.Options {
	return fetcher.Options{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 2 * time.Minute}),
		FTP:  fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: 2 * time.Minute}),
	}
}

func rowSource(c config.DataConfig, opts fetcher.Options) dataset.Source {
	return dataset.Source{
		Path:        c.Rows,
		Sheet:       c.Sheet,
		SQLiteDSN:   c.SQLiteDSN,
		SQLiteTable: c.SQLiteTable,
		DatabaseURL: c.DatabaseURL,
		Table:       c.Table,
		Fetch:       opts,
	}
}

// loadData reads the indicator rows and the boundary collection concurrently.
// Either failing aborts startup.
func loadData(ctx context.Context, c *config.Config) (*dashboardData, error) {
	if err := c.Validate("data"); err != nil {
		return nil, err
	}
	opts := fetchOptions()

	var d dashboardData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, stats, err := dataset.Load(gctx, rowSource(c.Data, opts))
		if err != nil {
			return eris.Wrap(err, "load rows")
		}
		d.Table, d.Stats = t, stats
		return nil
	})
	g.Go(func() error {
		b, err := boundary.Load(gctx, c.Data.Boundaries, c.Data.TempDir, opts)
		if err != nil {
			return eris.Wrap(err, "load boundaries")
		}
		d.Bounds = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	join := d.Bounds.Join(d.Table.Rows())
	if len(join.Unmapped) > 0 {
		zap.L().Warn("rows without a boundary will not be drawn",
			zap.Int("unmapped", len(join.Unmapped)),
			zap.Strings("sample", head(join.Unmapped, 10)),
		)
	}
	return &d, nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
