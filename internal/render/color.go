package render

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// YlOrRd is the yellow-orange-red sequential scale used for the primary map.
var YlOrRd = NewScale("#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026")

// Highlight is the single color of the filtered map.
var Highlight = drawing.ColorFromHex("#ffa500")

// Dashboard palette.
var (
	background = drawing.ColorFromHex("#0e1117")
	accent     = drawing.ColorFromHex("#ffa500")
)

// Scale maps a normalized position in [0,1] to a color by linear
// interpolation between evenly spaced stops.
type Scale struct {
	stops []drawing.Color
}

// NewScale builds a scale from hex color stops.
func NewScale(hex ...string) Scale {
	stops := make([]drawing.Color, len(hex))
	for i, h := range hex {
		stops[i] = drawing.ColorFromHex(h)
	}
	return Scale{stops: stops}
}

// At returns the color for v within r. Values outside r are clamped, so the
// map saturates the same way a fixed color range does.
func (s Scale) At(v, lo, hi float64) drawing.Color {
	if len(s.stops) == 0 {
		return drawing.Color{}
	}
	if len(s.stops) == 1 || hi <= lo || math.IsNaN(v) {
		return s.stops[0]
	}
	t := (v - lo) / (hi - lo)
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	frac := pos - float64(i)
	a, b := s.stops[i], s.stops[i+1]
	return drawing.Color{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Hex formats a color as #rrggbb.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
