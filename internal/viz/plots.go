// Package viz renders run output in the terminal: time series,
// photon-number histograms and phase-space heat maps.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/masersim/internal/postprocess"
)

var (
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// Series plots one observable against time.
func Series(caption string, data []float64) string {
	if len(data) == 0 {
		return captionStyle.Render(caption + ": no data")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// MultiSeries plots several observables on one graph.
func MultiSeries(caption string, data [][]float64) string {
	if len(data) == 0 {
		return captionStyle.Render(caption + ": no data")
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// Histogram renders a photon-number distribution as horizontal bars.
func Histogram(probs []float64) string {
	max := 0.0
	for _, p := range probs {
		if p > max {
			max = p
		}
	}
	if max == 0 {
		max = 1
	}

	var sb strings.Builder
	for n, p := range probs {
		bar := int(p / max * 50)
		sb.WriteString(labelStyle.Render(fmt.Sprintf("n=%2d ", n)))
		sb.WriteString(barStyle.Render(strings.Repeat("█", bar)))
		sb.WriteString(fmt.Sprintf(" %.4f\n", p))
	}
	return sb.String()
}

// heat map shading from empty to full
var shades = []rune(" .:-=+*#%@")

// Heatmap renders a Q function as shaded characters, imaginary axis
// vertical and increasing upward.
func Heatmap(g *postprocess.QGrid) string {
	max := g.Max()
	if max == 0 {
		max = 1
	}

	var sb strings.Builder
	for i := len(g.Q) - 1; i >= 0; i-- {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%6.2f ", g.Im[i])))
		for _, q := range g.Q[i] {
			level := int(q / max * float64(len(shades)-1))
			if level < 0 {
				level = 0
			}
			if level >= len(shades) {
				level = len(shades) - 1
			}
			sb.WriteRune(shades[level])
			sb.WriteRune(shades[level]) // double width for aspect ratio
		}
		sb.WriteRune('\n')
	}
	sb.WriteString(labelStyle.Render(fmt.Sprintf("       Re(α) in [%.2f, %.2f], peak Q = %.4f", g.Re[0], g.Re[len(g.Re)-1], max)))
	sb.WriteRune('\n')
	return sb.String()
}
