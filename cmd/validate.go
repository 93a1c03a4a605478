package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configured data sources and report what was found",
	Long:  "Loads the indicator rows and boundaries, then prints row, county and boundary counts, the years present and rows without an outline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadData(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		formatValidation(os.Stdout, d)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// formatValidation writes a plain-text load report to out.
func formatValidation(out io.Writer, d *dashboardData) {
	join := d.Bounds.Join(d.Table.Rows())
	years := d.Table.Years()

	_, _ = fmt.Fprintf(out, "rows read:         %d\n", d.Stats.Read)
	_, _ = fmt.Fprintf(out, "rows kept:         %d\n", d.Stats.Kept)
	_, _ = fmt.Fprintf(out, "dropped sentinel:  %d\n", d.Stats.DroppedSentinel)
	_, _ = fmt.Fprintf(out, "dropped blank:     %d\n", d.Stats.DroppedBlank)
	_, _ = fmt.Fprintf(out, "counties:          %d\n", d.Table.Counties())
	if len(years) > 0 {
		_, _ = fmt.Fprintf(out, "years:             %d-%d (%d)\n", years[0], years[len(years)-1], len(years))
	}
	_, _ = fmt.Fprintf(out, "boundaries:        %d\n", d.Bounds.Len())
	_, _ = fmt.Fprintf(out, "matched:           %d\n", len(join.Matched))
	_, _ = fmt.Fprintf(out, "unmapped:          %d\n", len(join.Unmapped))
	_, _ = fmt.Fprintf(out, "outlines no data:  %d\n", len(join.NoData))
	if len(join.Unmapped) > 0 {
		_, _ = fmt.Fprintf(out, "unmapped fips:     %s\n", strings.Join(head(join.Unmapped, 20), ", "))
	}
}
