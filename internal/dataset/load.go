package dataset

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/fetcher"
)

// Columns lists the required source columns in canonical order.
var Columns = []string{"FIPS", "County", "Year", "FIR", "IncomePerCapita", "FinalUR", "FinalCPM"}

// LoadStats summarizes a load.
type LoadStats struct {
	Read            int `json:"read"`
	Kept            int `json:"kept"`
	DroppedSentinel int `json:"dropped_sentinel"`
	DroppedBlank    int `json:"dropped_blank"`
}

// columnIndex maps canonical column positions to positions in a source header.
type columnIndex [7]int

func indexHeader(header []string) (columnIndex, error) {
	var idx columnIndex
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for i, col := range Columns {
		j, ok := pos[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[i] = j
	}
	if len(missing) > 0 {
		return idx, eris.Errorf("dataset: missing columns %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// errBlank marks a row with an empty or NaN cell; such rows are skipped, not fatal.
var errBlank = eris.New("blank cell")

func parseRecord(idx columnIndex, cells []string) (Record, error) {
	get := func(i int) string {
		if idx[i] >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx[i]])
	}
	num := func(i int) (float64, error) {
		s := get(i)
		if s == "" {
			return 0, errBlank
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Wrapf(err, "column %s", Columns[i])
		}
		// Spreadsheet exports spell missing values as NaN.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errBlank
		}
		return v, nil
	}

	var rec Record
	rawFIPS := get(0)
	if rawFIPS == "" {
		return rec, errBlank
	}
	if rawFIPS == "-1" {
		rec.FIPS = rawFIPS
	} else {
		rec.FIPS = NormalizeFIPS(rawFIPS)
	}
	rec.County = get(1)

	year, err := num(2)
	if err != nil {
		return rec, err
	}
	if year != math.Trunc(year) {
		return rec, eris.Errorf("column Year: %v is not a whole year", year)
	}
	rec.Year = int(year)

	dest := []*float64{&rec.FIR, &rec.IncomePerCapita, &rec.FinalUR, &rec.FinalCPM}
	for i, d := range dest {
		v, err := num(3 + i)
		if err != nil {
			return rec, err
		}
		*d = v
	}
	return rec, nil
}

// ParseRows converts raw cell rows into validated records. Rows with any
// sentinel value or a blank cell are dropped and counted; a cell that does
// not parse aborts the load.
func ParseRows(ctx context.Context, header []string, rowCh <-chan []string, errCh <-chan error) ([]Record, LoadStats, error) {
	var stats LoadStats
	idx, err := indexHeader(header)
	if err != nil {
		drain(rowCh, errCh)
		return nil, stats, err
	}

	var out []Record
	line := 1
	for cells := range rowCh {
		line++
		if ctx.Err() != nil {
			drain(rowCh, errCh)
			return nil, stats, eris.Wrap(ctx.Err(), "dataset: context cancelled")
		}
		stats.Read++

		rec, err := parseRecord(idx, cells)
		if eris.Is(err, errBlank) {
			stats.DroppedBlank++
			continue
		}
		if err != nil {
			drain(rowCh, errCh)
			return nil, stats, eris.Wrapf(err, "dataset: row %d", line)
		}
		if rec.HasSentinel() {
			stats.DroppedSentinel++
			continue
		}
		out = append(out, rec)
	}
	for err := range errCh {
		if err != nil {
			return nil, stats, eris.Wrap(err, "dataset: read rows")
		}
	}

	stats.Kept = len(out)
	return out, stats, nil
}

func drain(rowCh <-chan []string, errCh <-chan error) {
	for range rowCh {
	}
	for range errCh {
	}
}

// LoadCSV reads a header-led CSV table.
func LoadCSV(ctx context.Context, r io.Reader) ([]Record, LoadStats, error) {
	return LoadDelimited(ctx, r, ',')
}

// LoadDelimited reads a header-led table whose cells are split on sep.
func LoadDelimited(ctx context.Context, r io.Reader, sep rune) ([]Record, LoadStats, error) {
	return loadStream(ctx, func(headerCh chan<- []string) (<-chan []string, <-chan error) {
		return fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
			Delimiter: sep,
			HasHeader: true,
			HeaderCh:  headerCh,
			TrimSpace: true,
		})
	})
}

// LoadXLSX reads a header-led worksheet. An empty sheet name selects the first sheet.
func LoadXLSX(ctx context.Context, r io.Reader, sheet string) ([]Record, LoadStats, error) {
	return loadStream(ctx, func(headerCh chan<- []string) (<-chan []string, <-chan error) {
		return fetcher.StreamXLSX(ctx, r, fetcher.XLSXOptions{
			SheetName: sheet,
			HasHeader: true,
			HeaderCh:  headerCh,
		})
	})
}

func loadStream(ctx context.Context, open func(chan<- []string) (<-chan []string, <-chan error)) ([]Record, LoadStats, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := open(headerCh)

	// The header is sent before any data row, so a buffered channel is
	// populated by the time the first row (or close) is observed.
	first, more := <-rowCh
	var header []string
	select {
	case header = <-headerCh:
	default:
	}
	if header == nil {
		for range rowCh {
		}
		for err := range errCh {
			if err != nil {
				return nil, LoadStats{}, eris.Wrap(err, "dataset: read header")
			}
		}
		return nil, LoadStats{}, eris.New("dataset: source is empty")
	}

	replay := make(chan []string, 64)
	go func() {
		defer close(replay)
		if more {
			replay <- first
		}
		for row := range rowCh {
			replay <- row
		}
	}()

	rows, stats, err := ParseRows(ctx, header, replay, errCh)
	if err != nil {
		return nil, stats, err
	}
	zap.L().Debug("dataset: rows parsed",
		zap.Int("read", stats.Read),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped_sentinel", stats.DroppedSentinel),
		zap.Int("dropped_blank", stats.DroppedBlank),
	)
	return rows, stats, nil
}
