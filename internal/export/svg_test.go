package export

import (
	"strings"
	"testing"

	"github.com/san-kum/masersim/internal/postprocess"
)

func TestHusimiSVG(t *testing.T) {
	grid := &postprocess.QGrid{
		Re: []float64{-1, 0, 1},
		Im: []float64{-1, 0, 1},
		Q: [][]float64{
			{0, 0, 0},
			{0, 0.3, 0},
			{0, 0, 0.1},
		},
	}

	svg := HusimiSVG(grid, 10)
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Fatal("missing XML header")
	}
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Fatal("missing svg element")
	}

	// Two nonzero cells plus the background rect.
	if got := strings.Count(svg, "<rect"); got != 3 {
		t.Errorf("rect count = %d, want 3", got)
	}

	// The grid maximum maps to the top of the color ramp.
	if !strings.Contains(svg, "#ffffff") {
		t.Error("expected full-scale cell to render white")
	}
}

func TestHusimiSVGEmpty(t *testing.T) {
	if got := HusimiSVG(nil, 10); got != "" {
		t.Errorf("nil grid produced output: %q", got)
	}
}
