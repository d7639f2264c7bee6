package pdfreport

import (
	"math"
	"strconv"
)

const (
	// BarGap is the horizontal space between adjacent bars.
	BarGap = 4.0
	// MinBarWidth is the narrowest bar drawn. Bars that would not fit at
	// this width are summed into a trailing "Other" bar.
	MinBarWidth = 2.0
	// OtherLabel labels the bar holding values that did not fit.
	OtherLabel = "Other"
	// LabelBudget is the number of characters of a bar label kept before
	// it is cut and suffixed with "...".
	LabelBudget = 10

	valueBand = 5.0 // room above the tallest bar for its value
	labelBand = 6.0 // room under the baseline for labels
)

// Bar is one computed bar. Y is the top edge; the bar extends down to the
// chart baseline.
type Bar struct {
	X, Y, W, H float64
	Label      string
	Value      float64
}

// ChartGeometry is the fully computed layout of a bar chart.
type ChartGeometry struct {
	Bars      []Bar
	MaxValue  float64
	Baseline  float64
	Available float64
}

// ComputeChart lays out bars for labels/values inside the box starting at
// (x, y) of the given width, with height available for the bars themselves.
// Extra labels or values beyond the shorter slice are ignored.
func ComputeChart(labels []string, values []float64, x, y, width, height float64) ChartGeometry {
	n := min(len(labels), len(values))
	labels, values = labels[:n], values[:n]
	if fit := maxBarsFor(width); n > fit {
		labels, values = foldOverflow(labels, values, fit)
		n = fit
	}

	maxValue := 1.0
	for _, v := range values {
		maxValue = math.Max(maxValue, v)
	}

	g := ChartGeometry{
		MaxValue:  maxValue,
		Baseline:  y + valueBand + height,
		Available: height,
	}
	if n == 0 {
		return g
	}

	barW := (width - BarGap*float64(n-1)) / float64(n)
	g.Bars = make([]Bar, n)
	for i := range n {
		v := values[i]
		h := math.Max(0, v/maxValue*height)
		g.Bars[i] = Bar{
			X:     x + float64(i)*(barW+BarGap),
			Y:     g.Baseline - h,
			W:     barW,
			H:     h,
			Label: TruncateLabel(labels[i]),
			Value: v,
		}
	}
	return g
}

// maxBarsFor is the number of bars of at least MinBarWidth that fit in width.
func maxBarsFor(width float64) int {
	return max(1, int((width+BarGap)/(MinBarWidth+BarGap)))
}

func foldOverflow(labels []string, values []float64, fit int) ([]string, []float64) {
	keep := fit - 1
	other := 0.0
	for _, v := range values[keep:] {
		other += v
	}
	outLabels := append(labels[:keep:keep], OtherLabel)
	outValues := append(values[:keep:keep], other)
	return outLabels, outValues
}

// ChartHeight is the vertical space a chart with bars of height h occupies.
func ChartHeight(h float64) float64 {
	return valueBand + h + labelBand
}

// TruncateLabel shortens labels longer than LabelBudget characters.
func TruncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= LabelBudget {
		return s
	}
	return string(runes[:LabelBudget]) + "..."
}

// BarChart draws a bar chart whose bars may be up to height tall. The whole
// chart is kept on one page.
func (d *Document) BarChart(labels []string, values []float64, height float64) ChartGeometry {
	d.EnsureSpace(ChartHeight(height) + blockSpacing)

	g := ComputeChart(labels, values, d.margin, d.y, d.ContentWidth(), height)
	d.c.SetFont("", 8)
	d.c.SetFillColor(66, 99, 235)
	for _, b := range g.Bars {
		if b.H > 0 {
			d.c.FillRect(b.X, b.Y, b.W, b.H)
		}
		value := strconv.FormatFloat(b.Value, 'f', -1, 64)
		d.c.Text(b.X+(b.W-d.c.StringWidth(value))/2, b.Y-1, value)
		d.c.Text(b.X+(b.W-d.c.StringWidth(b.Label))/2, g.Baseline+labelBand-2, b.Label)
	}
	d.c.Line(d.margin, g.Baseline, d.margin+d.ContentWidth(), g.Baseline)

	d.y += ChartHeight(height) + blockSpacing
	return g
}
