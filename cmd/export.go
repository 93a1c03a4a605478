package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/export"
	"github.com/sells-group/foodmap/internal/fetcher"
	"github.com/sells-group/foodmap/internal/selection"
)

var (
	exportFilters []string
	exportYear    int
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the counties that pass a set of filters",
	Long: "Applies every --filter FIELD=MIN:MAX to the base year's rows and writes the subset " +
		"to an .xlsx or .csv file. Repeating a field keeps the first range, as the dashboard does.",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := parseFilters(exportFilters)
		if err != nil {
			return err
		}
		format, err := exportFormat(exportOut)
		if err != nil {
			return err
		}

		d, err := loadData(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		year := exportYear
		if year == 0 {
			year = cfg.Dashboard.BaseYear
		}

		rows, applied, err := filterRows(d.Table, year, criteria)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportOut)
		}
		if err := export.Write(f, format, rows, applied); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", exportOut)
		}

		zap.L().Info("export written",
			zap.String("path", exportOut),
			zap.Int("year", year),
			zap.Int("filters", len(applied)),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

// parseFilters reads FIELD=MIN:MAX flags in order.
func parseFilters(raw []string) ([]selection.Criterion, error) {
	out := make([]selection.Criterion, 0, len(raw))
	for _, s := range raw {
		name, bounds, ok := strings.Cut(s, "=")
		if !ok {
			return nil, eris.Errorf("export: filter %q must be FIELD=MIN:MAX", s)
		}
		f, err := dataset.ParseField(name)
		if err != nil {
			return nil, err
		}
		lo, hi, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, eris.Errorf("export: filter %q must be FIELD=MIN:MAX", s)
		}
		minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "export: filter %q min", s)
		}
		maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "export: filter %q max", s)
		}
		out = append(out, selection.Criterion{Field: f, Range: dataset.Range{Min: minV, Max: maxV}})
	}
	return out, nil
}

// filterRows runs the criteria through the same stage, add and apply steps a
// dashboard session uses and returns the matching rows of year with the
// filters that took effect.
func filterRows(t *dataset.Table, year int, criteria []selection.Criterion) ([]dataset.Record, []selection.Criterion, error) {
	st := selection.New(year, "")
	for _, c := range criteria {
		if err := st.StageFilter(c.Field, c.Range); err != nil {
			return nil, nil, eris.Wrapf(err, "export: filter %s", c)
		}
		added, err := st.AddFilter()
		if err != nil {
			return nil, nil, err
		}
		if !added {
			zap.L().Warn("filter ignored, field already filtered", zap.String("filter", c.String()))
		}
	}
	return st.ApplyFilters(t, year), st.Filters(), nil
}

func exportFormat(path string) (string, error) {
	switch ext := fetcher.Ext(path); ext {
	case ".xlsx":
		return export.FormatXLSX, nil
	case ".csv":
		return export.FormatCSV, nil
	default:
		return "", eris.Errorf("export: --out must end in .xlsx or .csv, got %q", path)
	}
}

func init() {
	exportCmd.Flags().StringArrayVar(&exportFilters, "filter", nil, "filter as FIELD=MIN:MAX (repeatable)")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "year to filter (default dashboard.base_year)")
	exportCmd.Flags().StringVar(&exportOut, "out", "foodmap.xlsx", "output file (.xlsx or .csv)")
	rootCmd.AddCommand(exportCmd)
}
