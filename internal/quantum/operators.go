// Package quantum builds the fixed operator matrices for a three-level
// atom coupled to a single truncated-Fock cavity mode.
package quantum

import (
	"fmt"
	"math"

	"github.com/san-kum/masersim/internal/linalg"
)

// AtomDim is the number of atomic levels.
const AtomDim = 3

// Projector returns |i><i| on a dim-level system, levels numbered 1..dim.
func Projector(dim, i int) (*linalg.Matrix, error) {
	if i < 1 || i > dim {
		return nil, fmt.Errorf("level %d out of range 1..%d", i, dim)
	}
	p := linalg.New(dim)
	p.Set(i-1, i-1, 1)
	return p, nil
}

// Transition returns |i><j| on a dim-level system, levels numbered 1..dim.
func Transition(dim, i, j int) (*linalg.Matrix, error) {
	if i < 1 || i > dim || j < 1 || j > dim {
		return nil, fmt.Errorf("levels (%d,%d) out of range 1..%d", i, j, dim)
	}
	s := linalg.New(dim)
	s.Set(i-1, j-1, 1)
	return s, nil
}

// Destroy returns the cavity lowering operator on the Fock space
// truncated at nph photons: <n-1|a|n> = sqrt(n). The commutation
// relation [a, a†] = 1 holds everywhere except the truncation boundary.
func Destroy(nph int) (*linalg.Matrix, error) {
	if nph < 0 {
		return nil, fmt.Errorf("photon truncation must be >= 0, got %d", nph)
	}
	dim := nph + 1
	a := linalg.New(dim)
	for n := 1; n < dim; n++ {
		a.Set(n-1, n, complex(math.Sqrt(float64(n)), 0))
	}
	return a, nil
}

// LiftAtom extends an atomic operator to the composite atom⊗cavity
// space by tensoring with the cavity identity.
func LiftAtom(op *linalg.Matrix, cavityDim int) *linalg.Matrix {
	return linalg.Kron(op, linalg.Identity(cavityDim))
}

// LiftCavity extends a cavity operator to the composite space.
func LiftCavity(op *linalg.Matrix) *linalg.Matrix {
	return linalg.Kron(linalg.Identity(AtomDim), op)
}

// PureState returns the density matrix |i><i| of a basis state,
// levels numbered 1..dim.
func PureState(dim, i int) (*linalg.Matrix, error) {
	return Projector(dim, i)
}

// ProductState returns rhoA ⊗ rhoB.
func ProductState(rhoA, rhoB *linalg.Matrix) *linalg.Matrix {
	return linalg.Kron(rhoA, rhoB)
}

// ReduceAtom traces out the cavity, returning the 3x3 atomic state.
func ReduceAtom(rho *linalg.Matrix, cavityDim int) (*linalg.Matrix, error) {
	if rho.N != AtomDim*cavityDim {
		return nil, fmt.Errorf("state dim %d does not factor as %d x %d", rho.N, AtomDim, cavityDim)
	}
	out := linalg.New(AtomDim)
	for i := 0; i < AtomDim; i++ {
		for j := 0; j < AtomDim; j++ {
			var s complex128
			for n := 0; n < cavityDim; n++ {
				s += rho.At(i*cavityDim+n, j*cavityDim+n)
			}
			out.Set(i, j, s)
		}
	}
	return out, nil
}

// ReduceCavity traces out the atom, returning the cavity state.
func ReduceCavity(rho *linalg.Matrix, cavityDim int) (*linalg.Matrix, error) {
	if rho.N != AtomDim*cavityDim {
		return nil, fmt.Errorf("state dim %d does not factor as %d x %d", rho.N, AtomDim, cavityDim)
	}
	out := linalg.New(cavityDim)
	for n := 0; n < cavityDim; n++ {
		for m := 0; m < cavityDim; m++ {
			var s complex128
			for i := 0; i < AtomDim; i++ {
				s += rho.At(i*cavityDim+n, i*cavityDim+m)
			}
			out.Set(n, m, s)
		}
	}
	return out, nil
}
