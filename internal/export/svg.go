// Package export renders simulation output to standalone SVG files.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/masersim/internal/postprocess"
)

// HusimiSVG renders a Husimi Q grid as an SVG heat map. Each grid cell
// becomes one rectangle, colored on a dark-to-bright scale normalized to
// the grid maximum. The vertical axis runs from negative to positive
// Im(alpha), bottom to top.
func HusimiSVG(grid *postprocess.QGrid, cellSize float64) string {
	if grid == nil || len(grid.Q) == 0 {
		return ""
	}

	rows := len(grid.Q)
	cols := len(grid.Q[0])
	width := float64(cols) * cellSize
	height := float64(rows) * cellSize

	max := grid.Max()
	if max <= 0 {
		max = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i := 0; i < rows; i++ {
		// Row 0 of the grid is the most negative Im(alpha); draw it at
		// the bottom of the image.
		y := float64(rows-1-i) * cellSize
		for j := 0; j < cols; j++ {
			v := grid.Q[i][j] / max
			if v < 1e-3 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(j)*cellSize, y, cellSize, cellSize, heatColor(v)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// heatColor maps a normalized value in [0,1] to a black-violet-orange-white
// ramp.
func heatColor(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	var r, g, b int
	switch {
	case v < 0.25:
		t := v / 0.25
		r, g, b = int(80*t), 0, int(120*t)
	case v < 0.5:
		t := (v - 0.25) / 0.25
		r, g, b = 80+int(140*t), int(40*t), 120-int(60*t)
	case v < 0.75:
		t := (v - 0.5) / 0.25
		r, g, b = 220+int(35*t), 40+int(130*t), 60-int(40*t)
	default:
		t := (v - 0.75) / 0.25
		r, g, b = 255, 170+int(85*t), 20+int(235*t)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// WriteHusimiSVG renders the grid and writes it to path.
func WriteHusimiSVG(grid *postprocess.QGrid, cellSize float64, path string) error {
	svg := HusimiSVG(grid, cellSize)
	if svg == "" {
		return fmt.Errorf("export: empty grid")
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("export: write svg: %w", err)
	}
	return nil
}
