// Package chart computes the geometry for the Visualize mode: a line chart
// of daily totals and horizontal bars of per-category totals. The HTML
// templates turn the result into inline SVG.
package chart

import (
	"math"
	"strconv"
	"strings"

	"kharcha/internal/core"
)

// Padding is the inner margin of the line chart, in SVG units.
const Padding = 24

// Dot is one plotted day.
type Dot struct {
	X, Y  float64
	Day   string
	Label string
}

// LineChart holds everything the template needs to draw the daily series.
type LineChart struct {
	Width, Height int
	Points        string // SVG polyline points attribute
	Dots          []Dot
	BaselineY     float64
	MaxLabel      string
	MinLabel      string
}

// Line lays out days left to right in the given box. Values are scaled
// between min(0, smallest) and max(0, largest) so the zero line is always
// visible. A single day is drawn centred.
func Line(days []core.DayTotal, width, height int) LineChart {
	lc := LineChart{Width: width, Height: height}
	if len(days) == 0 {
		return lc
	}

	lo, hi := 0.0, 0.0
	for _, d := range days {
		lo = math.Min(lo, d.Total)
		hi = math.Max(hi, d.Total)
	}
	if hi == lo {
		hi = lo + 1
	}

	plotW := float64(width - 2*Padding)
	plotH := float64(height - 2*Padding)
	y := func(v float64) float64 {
		return round2(Padding + (hi-v)/(hi-lo)*plotH)
	}

	pts := make([]string, 0, len(days))
	for i, d := range days {
		x := float64(Padding) + plotW/2
		if len(days) > 1 {
			x = float64(Padding) + float64(i)*plotW/float64(len(days)-1)
		}
		x = round2(x)
		dot := Dot{
			X:     x,
			Y:     y(d.Total),
			Day:   d.Day.Format(core.DateLayout),
			Label: core.FormatRupees(d.Total),
		}
		lc.Dots = append(lc.Dots, dot)
		pts = append(pts, fmtFloat(dot.X)+","+fmtFloat(dot.Y))
	}

	lc.Points = strings.Join(pts, " ")
	lc.BaselineY = y(0)
	lc.MaxLabel = core.FormatRupees(hi)
	lc.MinLabel = core.FormatRupees(lo)
	return lc
}

// Bar is one category row.
type Bar struct {
	Category core.Category
	Amount   string
	Width    int // percent of the largest total
}

// Bars scales each total against the largest absolute total. Non-zero
// values get at least 2% so they stay visible.
func Bars(cats []core.CategoryTotal) []Bar {
	maxAbs := 0.0
	for _, c := range cats {
		maxAbs = math.Max(maxAbs, math.Abs(c.Total))
	}

	bars := make([]Bar, 0, len(cats))
	for _, c := range cats {
		width := 0
		if maxAbs > 0 {
			width = int(math.Round(math.Abs(c.Total) * 100 / maxAbs))
			if c.Total != 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		bars = append(bars, Bar{Category: c.Category, Amount: core.FormatRupees(c.Total), Width: width})
	}
	return bars
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
