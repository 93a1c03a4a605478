package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Querier is the subset of a pgx pool used by LoadPostgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// selectSQL builds the row query for table. Identifiers are quoted so the
// mixed-case column names survive both SQLite and Postgres.
func selectSQL(table string) (string, error) {
	if !tableName.MatchString(table) {
		return "", eris.Errorf("dataset: invalid table name %q", table)
	}
	quoted := make([]string, len(Columns))
	for i, c := range Columns {
		quoted[i] = `"` + c + `"`
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return fmt.Sprintf(`SELECT %s FROM %s ORDER BY "FIPS", "Year"`,
		strings.Join(quoted, ", "), strings.Join(parts, ".")), nil
}

// OpenSQLite opens a read-only SQLite database. The pool holds a single
// connection so the query_only pragma covers every statement.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA query_only")
	}
	return db, nil
}

// LoadSQLite reads the indicator table from a SQLite database.
func LoadSQLite(ctx context.Context, db *sql.DB, table string) ([]Record, LoadStats, error) {
	query, err := selectSQL(table)
	if err != nil {
		return nil, LoadStats{}, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, LoadStats{}, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(rowCh)
		defer close(errCh)
		for rows.Next() {
			vals := make([]sql.NullString, len(Columns))
			dest := make([]any, len(vals))
			for i := range vals {
				dest[i] = &vals[i]
			}
			if err := rows.Scan(dest...); err != nil {
				errCh <- eris.Wrap(err, "sqlite: scan row")
				return
			}
			cells := make([]string, len(vals))
			for i, v := range vals {
				cells[i] = v.String
			}
			select {
			case rowCh <- cells:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "sqlite: context cancelled")
				return
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- eris.Wrap(err, "sqlite: iterate rows")
		}
	}()

	return ParseRows(ctx, Columns, rowCh, errCh)
}

// OpenPostgres connects a small pool for the one-shot startup load.
func OpenPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 2
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return pool, nil
}

// LoadPostgres reads the indicator table from Postgres.
func LoadPostgres(ctx context.Context, q Querier, table string) ([]Record, LoadStats, error) {
	query, err := selectSQL(table)
	if err != nil {
		return nil, LoadStats{}, err
	}

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, LoadStats{}, eris.Wrapf(err, "postgres: query %s", table)
	}

	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(rowCh)
		defer close(errCh)
		defer rows.Close()
		for rows.Next() {
			vals, err := rows.Values()
			if err != nil {
				errCh <- eris.Wrap(err, "postgres: read values")
				return
			}
			cells := make([]string, len(vals))
			for i, v := range vals {
				cells[i] = cellString(v)
			}
			select {
			case rowCh <- cells:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "postgres: context cancelled")
				return
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- eris.Wrap(err, "postgres: iterate rows")
		}
	}()

	return ParseRows(ctx, Columns, rowCh, errCh)
}

// cellString renders a driver value the way the CSV source would spell it.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case interface {
		Float64Value() (pgtype.Float8, error)
	}:
		// NUMERIC columns decode to pgtype.Numeric.
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
