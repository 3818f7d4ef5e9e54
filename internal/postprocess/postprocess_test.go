package postprocess

import (
	"math"
	"testing"

	"github.com/san-kum/masersim/internal/linalg"
	"github.com/san-kum/masersim/internal/quantum"
)

func TestSecondOrderCoherence(t *testing.T) {
	// coherent light: <a†a†aa> = <a†a>² so g2 = 1
	if g2 := SecondOrderCoherence(2.0, 4.0); math.Abs(g2-1) > 1e-15 {
		t.Errorf("g2 = %v, want 1", g2)
	}
	// single Fock photon: <a†a†aa> = 0, antibunched
	if g2 := SecondOrderCoherence(1.0, 0); g2 != 0 {
		t.Errorf("g2 = %v, want 0", g2)
	}
	// empty cavity: undefined, not a crash
	if g2 := SecondOrderCoherence(0, 0); !math.IsNaN(g2) {
		t.Errorf("g2 with empty cavity = %v, want NaN", g2)
	}
}

func fockComposite(t *testing.T, cavityDim, atomLevel, n int) *linalg.Matrix {
	t.Helper()
	atom, err := quantum.PureState(quantum.AtomDim, atomLevel)
	if err != nil {
		t.Fatal(err)
	}
	fock, err := quantum.PureState(cavityDim, n+1)
	if err != nil {
		t.Fatal(err)
	}
	return quantum.ProductState(atom, fock)
}

func TestPhotonDistribution(t *testing.T) {
	cav := 5
	rho := fockComposite(t, cav, 1, 2)

	probs, err := PhotonDistribution(rho, cav)
	if err != nil {
		t.Fatal(err)
	}
	if len(probs) != cav {
		t.Fatalf("distribution length %d, want %d", len(probs), cav)
	}
	for n, p := range probs {
		want := 0.0
		if n == 2 {
			want = 1.0
		}
		if math.Abs(p-want) > 1e-15 {
			t.Errorf("P(%d) = %v, want %v", n, p, want)
		}
	}
}

func TestPhotonMoments(t *testing.T) {
	// Fock |2>: <a†a> = 2, <a†a†aa> = n(n-1) = 2, so g2 = 0.5
	n, n2 := PhotonMoments([]float64{0, 0, 1})
	if n != 2 || n2 != 2 {
		t.Errorf("moments = (%v, %v), want (2, 2)", n, n2)
	}
	if g2 := SecondOrderCoherence(n, n2); math.Abs(g2-0.5) > 1e-15 {
		t.Errorf("g2 = %v, want 0.5", g2)
	}

	// mixture of |0> and |3>
	n, n2 = PhotonMoments([]float64{0.5, 0, 0, 0.5})
	if math.Abs(n-1.5) > 1e-15 || math.Abs(n2-3) > 1e-15 {
		t.Errorf("moments = (%v, %v), want (1.5, 3)", n, n2)
	}

	// vacuum
	n, n2 = PhotonMoments([]float64{1})
	if n != 0 || n2 != 0 {
		t.Errorf("vacuum moments = (%v, %v), want (0, 0)", n, n2)
	}
}

func TestPopulations(t *testing.T) {
	rho := fockComposite(t, 4, 3, 0)
	pops, err := Populations(rho, 4)
	if err != nil {
		t.Fatal(err)
	}
	if pops[0] != 0 || pops[1] != 0 || pops[2] != 1 {
		t.Errorf("populations = %v, want [0 0 1]", pops)
	}
}

func TestHusimiQVacuum(t *testing.T) {
	// vacuum: Q(alpha) = exp(-|alpha|²)/pi, peak 1/pi at the origin
	cav := 12
	rho := fockComposite(t, cav, 1, 0)

	grid, err := HusimiQ(rho, cav, 21, 2.0)
	if err != nil {
		t.Fatal(err)
	}

	center := grid.Q[10][10] // alpha = 0
	if math.Abs(center-1/math.Pi) > 1e-6 {
		t.Errorf("Q(0) = %v, want 1/pi = %v", center, 1/math.Pi)
	}

	for i, im := range grid.Im {
		for j, re := range grid.Re {
			want := math.Exp(-(re*re+im*im)) / math.Pi
			if math.Abs(grid.Q[i][j]-want) > 1e-4 {
				t.Fatalf("Q(%v + %vi) = %v, want %v", re, im, grid.Q[i][j], want)
			}
		}
	}

	if math.Abs(grid.Max()-center) > 1e-12 {
		t.Errorf("max Q = %v, want the origin value %v", grid.Max(), center)
	}
}

func TestHusimiQNormalizationSpan(t *testing.T) {
	// grid axes must span [-extent, extent] inclusive
	cav := 4
	rho := fockComposite(t, cav, 1, 0)
	grid, err := HusimiQ(rho, cav, 11, 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Re[0] != -3 || grid.Re[10] != 3 {
		t.Errorf("Re axis = [%v, %v], want [-3, 3]", grid.Re[0], grid.Re[10])
	}
	if grid.Im[0] != -3 || grid.Im[10] != 3 {
		t.Errorf("Im axis = [%v, %v], want [-3, 3]", grid.Im[0], grid.Im[10])
	}
}
