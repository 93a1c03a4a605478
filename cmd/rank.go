package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/render"
)

var (
	rankField string
	rankYear  int
	rankLimit int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List counties sorted by an indicator, highest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := dataset.ParseField(rankField)
		if err != nil {
			return err
		}
		d, err := loadData(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		year := rankYear
		if year == 0 {
			year = cfg.Dashboard.BaseYear
		}
		formatRankings(os.Stdout, d.Table.Rank(field, year, rankLimit), field)
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankField, "field", string(dataset.FieldFIR), "indicator to sort by (code or label)")
	rankCmd.Flags().IntVar(&rankYear, "year", 0, "year to rank (default dashboard.base_year)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 20, "maximum counties to list (0 for all)")
	rootCmd.AddCommand(rankCmd)
}

// formatRankings writes a ranked table of rows to out.
func formatRankings(out io.Writer, rows []dataset.Record, field dataset.Field) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tFIPS\tCOUNTY\t"+field.Label())
	_, _ = fmt.Fprintln(w, "----\t----\t------\t-----")
	for i, r := range rows {
		v, _ := r.Value(field)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.FIPS, r.County, render.FormatValue(field, v))
	}
	_ = w.Flush()
}
