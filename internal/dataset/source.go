package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/fetcher"
)

// Source locates the indicator rows. DatabaseURL wins over SQLiteDSN, which
// wins over Path.
type Source struct {
	Path        string
	Sheet       string
	SQLiteDSN   string
	SQLiteTable string
	DatabaseURL string
	Table       string
	Fetch       fetcher.Options
}

// Describe returns a log-friendly name for the source without credentials.
func (s Source) Describe() string {
	switch {
	case s.DatabaseURL != "":
		return "postgres:" + s.Table
	case s.SQLiteDSN != "":
		return "sqlite:" + s.SQLiteTable
	default:
		return s.Path
	}
}

// Load reads the rows from src and builds the table. Any failure is a
// startup precondition violation; callers are expected to abort.
func Load(ctx context.Context, src Source) (*Table, LoadStats, error) {
	log := zap.L().With(zap.String("component", "dataset.loader"), zap.String("source", src.Describe()))

	var (
		rows  []Record
		stats LoadStats
		err   error
	)
	switch {
	case src.DatabaseURL != "":
		pool, perr := OpenPostgres(ctx, src.DatabaseURL)
		if perr != nil {
			return nil, stats, perr
		}
		defer pool.Close()
		rows, stats, err = LoadPostgres(ctx, pool, src.Table)

	case src.SQLiteDSN != "":
		db, oerr := OpenSQLite(src.SQLiteDSN)
		if oerr != nil {
			return nil, stats, oerr
		}
		defer db.Close() //nolint:errcheck
		rows, stats, err = LoadSQLite(ctx, db, src.SQLiteTable)

	case src.Path != "":
		rc, oerr := fetcher.Open(ctx, src.Path, src.Fetch)
		if oerr != nil {
			return nil, stats, eris.Wrap(oerr, "dataset: open rows")
		}
		defer rc.Close() //nolint:errcheck

		switch ext := fetcher.Ext(src.Path); ext {
		case ".xlsx":
			rows, stats, err = LoadXLSX(ctx, rc, src.Sheet)
		case ".csv", ".txt", "":
			rows, stats, err = LoadCSV(ctx, rc)
		case ".tsv", ".tab":
			rows, stats, err = LoadDelimited(ctx, rc, '\t')
		default:
			return nil, stats, eris.Errorf("dataset: unsupported row file type %q", ext)
		}

	default:
		return nil, stats, eris.New("dataset: no row source configured")
	}
	if err != nil {
		return nil, stats, err
	}
	if len(rows) == 0 {
		return nil, stats, eris.Errorf("dataset: %s has no usable rows", src.Describe())
	}

	t := NewTable(rows)
	log.Info("dataset loaded",
		zap.Int("rows", t.Len()),
		zap.Int("counties", t.Counties()),
		zap.Ints("years", t.Years()),
		zap.Int("dropped_sentinel", stats.DroppedSentinel),
		zap.Int("dropped_blank", stats.DroppedBlank),
	)
	return t, stats, nil
}
