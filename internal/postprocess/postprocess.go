// Package postprocess computes photon statistics and phase-space
// distributions from recorded density-matrix snapshots.
package postprocess

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/masersim/internal/linalg"
	"github.com/san-kum/masersim/internal/quantum"
)

// SecondOrderCoherence returns g²(0) = <a†a†aa> / <a†a>². With an
// empty cavity the quantity is undefined and NaN is returned.
func SecondOrderCoherence(photonNumber, photonNumberSquaredTerm float64) float64 {
	if photonNumber == 0 {
		return math.NaN()
	}
	return photonNumberSquaredTerm / (photonNumber * photonNumber)
}

// PhotonDistribution returns P(n) for n = 0..nph from the composite
// state, the diagonal of the reduced cavity state.
func PhotonDistribution(rho *linalg.Matrix, cavityDim int) ([]float64, error) {
	cav, err := quantum.ReduceCavity(rho, cavityDim)
	if err != nil {
		return nil, err
	}
	p := make([]float64, cavityDim)
	for n := 0; n < cavityDim; n++ {
		p[n] = real(cav.At(n, n))
	}
	return p, nil
}

// PhotonMoments returns <a†a> and <a†a†aa> from a photon-number
// distribution: sum n P(n) and sum n(n-1) P(n).
func PhotonMoments(probs []float64) (n, n2 float64) {
	for k, p := range probs {
		n += float64(k) * p
		n2 += float64(k) * float64(k-1) * p
	}
	return n, n2
}

// Populations returns the diagonal of the reduced atomic state.
func Populations(rho *linalg.Matrix, cavityDim int) ([]float64, error) {
	atom, err := quantum.ReduceAtom(rho, cavityDim)
	if err != nil {
		return nil, err
	}
	p := make([]float64, quantum.AtomDim)
	for i := range p {
		p[i] = real(atom.At(i, i))
	}
	return p, nil
}

// coherentVec returns the truncated coherent state |alpha> in the Fock
// basis: c_n = exp(-|alpha|²/2) alpha^n / sqrt(n!).
func coherentVec(alpha complex128, dim int) []complex128 {
	c := make([]complex128, dim)
	norm := cmplx.Exp(complex(-0.5*(real(alpha)*real(alpha)+imag(alpha)*imag(alpha)), 0))
	c[0] = norm
	for n := 1; n < dim; n++ {
		c[n] = c[n-1] * alpha / complex(math.Sqrt(float64(n)), 0)
	}
	return c
}

// QGrid holds a Husimi Q function evaluated on a square phase-space
// grid: Q(alpha) = <alpha|rho_cav|alpha> / pi.
type QGrid struct {
	Re []float64   // Re(alpha) axis
	Im []float64   // Im(alpha) axis
	Q  [][]float64 // Q[i][j] at alpha = Re[j] + i*Im[i]
}

// HusimiQ evaluates the Q function of the reduced cavity state on a
// points x points grid spanning [-extent, extent] on both axes.
func HusimiQ(rho *linalg.Matrix, cavityDim, points int, extent float64) (*QGrid, error) {
	cav, err := quantum.ReduceCavity(rho, cavityDim)
	if err != nil {
		return nil, err
	}

	re := make([]float64, points)
	im := make([]float64, points)
	floats.Span(re, -extent, extent)
	floats.Span(im, -extent, extent)

	g := &QGrid{Re: re, Im: im, Q: make([][]float64, points)}
	for i := range im {
		g.Q[i] = make([]float64, points)
		for j := range re {
			v := coherentVec(complex(re[j], im[i]), cavityDim)
			var q complex128
			for n := 0; n < cavityDim; n++ {
				for m := 0; m < cavityDim; m++ {
					q += cmplx.Conj(v[n]) * cav.At(n, m) * v[m]
				}
			}
			g.Q[i][j] = real(q) / math.Pi
		}
	}
	return g, nil
}

// Max returns the largest Q value on the grid.
func (g *QGrid) Max() float64 {
	max := 0.0
	for _, row := range g.Q {
		m := floats.Max(row)
		if m > max {
			max = m
		}
	}
	return max
}
