package report

import (
	"fmt"
	"html"
	"strings"
)

// ChartRenderer renders a named chart as self-contained markup. The in-repo
// default implementation (SVGRenderer) uses only the standard library — no
// charting library appears anywhere in the example pack (gonum ships
// numerics, not gonum.org/v1/plot) — but the interface seam lets a richer
// renderer replace it without touching internal/pipeline or internal/report
// callers.
type ChartRenderer interface {
	BarChart(title string, labels []string, values []float64) string
	LineChart(title string, xLabels []string, values []float64) string
}

// SVGRenderer draws minimal, dependency-free bar and line charts.
type SVGRenderer struct{}

// NewSVGRenderer constructs the default renderer.
func NewSVGRenderer() SVGRenderer { return SVGRenderer{} }

const (
	chartWidth  = 640
	chartHeight = 360
	chartMargin = 40
)

// BarChart renders one vertical bar per (label, value) pair.
func (SVGRenderer) BarChart(title string, labels []string, values []float64) string {
	var b strings.Builder
	writeHeader(&b, title)

	max := maxOf(values)
	plotW := float64(chartWidth - 2*chartMargin)
	plotH := float64(chartHeight - 2*chartMargin)
	n := len(values)
	if n == 0 {
		writeFooter(&b)
		return b.String()
	}
	barW := plotW / float64(n) * 0.7
	gap := plotW / float64(n)

	for i, v := range values {
		h := 0.0
		if max > 0 {
			h = plotH * v / max
		}
		x := float64(chartMargin) + float64(i)*gap
		y := float64(chartMargin) + (plotH - h)
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#3b6fa0"/>`+"\n", x, y, barW, h)
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle">%s</text>`+"\n",
			x+barW/2, chartHeight-chartMargin+14, html.EscapeString(label))
	}

	writeFooter(&b)
	return b.String()
}

// LineChart renders a polyline over evenly-spaced x positions.
func (SVGRenderer) LineChart(title string, xLabels []string, values []float64) string {
	var b strings.Builder
	writeHeader(&b, title)

	max := maxOf(values)
	plotW := float64(chartWidth - 2*chartMargin)
	plotH := float64(chartHeight - 2*chartMargin)
	n := len(values)
	if n < 2 {
		writeFooter(&b)
		return b.String()
	}
	step := plotW / float64(n-1)

	var points strings.Builder
	for i, v := range values {
		h := 0.0
		if max > 0 {
			h = plotH * v / max
		}
		x := float64(chartMargin) + float64(i)*step
		y := float64(chartMargin) + (plotH - h)
		if i > 0 {
			points.WriteByte(' ')
		}
		fmt.Fprintf(&points, "%.1f,%.1f", x, y)
	}
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="#3b6fa0" stroke-width="2"/>`+"\n", points.String())

	writeFooter(&b)
	return b.String()
}

func writeHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="white"/>`+"\n")
	fmt.Fprintf(b, `<text x="%d" y="20" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		chartWidth/2, html.EscapeString(title))
}

func writeFooter(b *strings.Builder) {
	b.WriteString("</svg>\n")
}

func maxOf(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
