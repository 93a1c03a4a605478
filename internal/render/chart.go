package render

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/sells-group/foodmap/internal/dataset"
	"github.com/sells-group/foodmap/internal/selection"
)

// Chart output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ContentType returns the MIME type of a chart format.
func ContentType(format string) string {
	if format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ChartOptions sizes the trend chart.
type ChartOptions struct {
	Width  int
	Height int
}

// DefaultChartOptions matches the dashboard's 10x5 inch figure.
var DefaultChartOptions = ChartOptions{Width: 1000, Height: 500}

// TrendChart draws a county series as a single orange line on the dark
// dashboard background.
func TrendChart(s selection.Series, format string, opts ChartOptions) ([]byte, error) {
	var rp chart.RendererProvider
	switch format {
	case FormatPNG, "":
		rp = chart.PNG
	case FormatSVG:
		rp = chart.SVG
	default:
		return nil, eris.Errorf("render: unsupported chart format %q", format)
	}
	if len(s.Points) == 0 {
		return nil, eris.New("render: empty series")
	}

	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	xRange := &chart.ContinuousRange{Min: xs[0], Max: xs[0]}
	for _, x := range xs[1:] {
		xRange.Min = min(xRange.Min, x)
		xRange.Max = max(xRange.Max, x)
	}
	// A single point still needs a non-empty x extent.
	if xRange.Min == xRange.Max {
		xRange.Min -= 0.5
		xRange.Max += 0.5
	}
	yRange := &chart.ContinuousRange{Min: s.YRange.Min, Max: s.YRange.Max}
	if yRange.Min == yRange.Max {
		yRange.Min -= 1
		yRange.Max += 1
	}

	axisStyle := chart.Style{FontColor: accent, StrokeColor: accent}
	xAxis := chart.XAxis{Name: string(s.X), NameStyle: axisStyle, Style: axisStyle, Range: xRange}
	if s.X == dataset.FieldYear {
		xAxis.ValueFormatter = chart.IntValueFormatter
	}

	ch := chart.Chart{
		Title:      s.Title(),
		TitleStyle: chart.Style{FontColor: accent, FontSize: 15},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{FillColor: background, Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     chart.Style{FillColor: background},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: string(s.Y), NameStyle: axisStyle, Style: axisStyle, Range: yRange},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    s.County,
				Style:   chart.Style{StrokeColor: accent, StrokeWidth: 2},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(rp, &buf); err != nil {
		return nil, eris.Wrap(err, "render: draw trend chart")
	}
	return buf.Bytes(), nil
}
