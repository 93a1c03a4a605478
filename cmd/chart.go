package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/render"
	"github.com/sells-group/foodmap/internal/selection"
)

var (
	chartFIPS   string
	chartX      string
	chartY      string
	chartFormat string
	chartOut    string
	chartWidth  int
	chartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a county's trend chart to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := dataset.ParseAxis(chartX)
		if err != nil {
			return err
		}
		y, err := dataset.ParseField(chartY)
		if err != nil {
			return err
		}
		format := strings.ToLower(chartFormat)
		if format != render.FormatPNG && format != render.FormatSVG {
			return eris.Errorf("chart: format must be png or svg, got %q", chartFormat)
		}

		d, err := loadData(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		out := chartOut
		if out == "" {
			out = "trend-" + dataset.NormalizeFIPS(chartFIPS) + "." + format
		}
		return writeChart(d.Table, chartFIPS, x, y, format, render.ChartOptions{Width: chartWidth, Height: chartHeight}, out)
	},
}

// writeChart renders the trend of one county and writes the image to path.
func writeChart(t *dataset.Table, fips string, x, y dataset.Field, format string, opts render.ChartOptions, path string) error {
	series, err := selection.Trend(t, fips, x, y)
	if err != nil {
		return err
	}
	img, err := render.TrendChart(series, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return eris.Wrapf(err, "chart: write %s", path)
	}
	zap.L().Info("chart written",
		zap.String("title", series.Title()),
		zap.Int("points", len(series.Points)),
		zap.String("path", path),
	)
	return nil
}

func init() {
	chartCmd.Flags().StringVar(&chartFIPS, "fips", "1001", "county FIPS code")
	chartCmd.Flags().StringVar(&chartX, "x", string(dataset.FieldYear), "x axis (Year or an indicator)")
	chartCmd.Flags().StringVar(&chartY, "y", string(dataset.FieldFIR), "y axis indicator")
	chartCmd.Flags().StringVar(&chartFormat, "format", render.FormatPNG, "image format: png or svg")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "output file (default trend-<fips>.<format>)")
	chartCmd.Flags().IntVar(&chartWidth, "width", render.DefaultChartOptions.Width, "image width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", render.DefaultChartOptions.Height, "image height in pixels")
	rootCmd.AddCommand(chartCmd)
}
