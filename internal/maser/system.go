package maser

import (
	"math"

	"github.com/san-kum/masersim/internal/linalg"
	"github.com/san-kum/masersim/internal/quantum"
	"github.com/san-kum/masersim/internal/sample"
)

// System holds the fixed matrices of one maser run: the Hamiltonian,
// the weighted jump operators and the observables sampled during
// integration. Everything is read-only after construction and safe to
// share across parallel runs.
type System struct {
	Params Params
	Rates  Rates

	H     *linalg.Matrix
	Jumps []*linalg.Matrix

	P1, P2, P3 *linalg.Matrix // level populations, lifted
	A          *linalg.Matrix // cavity lowering operator, lifted
	Num        *linalg.Matrix // a†a
	Num2       *linalg.Matrix // a†a†aa
}

// NewSystem builds the operator set for the given parameters.
func NewSystem(p Params) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cav := p.Nph + 1

	p1, err := quantum.Projector(quantum.AtomDim, 1)
	if err != nil {
		return nil, err
	}
	p2, _ := quantum.Projector(quantum.AtomDim, 2)
	p3, _ := quantum.Projector(quantum.AtomDim, 3)

	s12, _ := quantum.Transition(quantum.AtomDim, 1, 2)
	s13, _ := quantum.Transition(quantum.AtomDim, 1, 3)
	s23, _ := quantum.Transition(quantum.AtomDim, 2, 3)

	a, err := quantum.Destroy(p.Nph)
	if err != nil {
		return nil, err
	}

	sys := &System{
		Params: p,
		Rates:  p.ComputeRates(),
		P1:     quantum.LiftAtom(p1, cav),
		P2:     quantum.LiftAtom(p2, cav),
		P3:     quantum.LiftAtom(p3, cav),
		A:      quantum.LiftCavity(a),
	}

	adag := linalg.Dagger(sys.A)
	sys.Num = linalg.Mul(adag, sys.A)
	sys.Num2 = linalg.Mul(linalg.Mul(adag, adag), linalg.Mul(sys.A, sys.A))

	l12 := quantum.LiftAtom(s12, cav)
	l13 := quantum.LiftAtom(s13, cav)
	l23 := quantum.LiftAtom(s23, cav)

	// H = sum_i w_i P_i + g (a† sigma12 + a sigma12†): photon emission
	// accompanies the 2 -> 1 lasing transition.
	h := linalg.Add(
		linalg.Add(
			linalg.Scale(complex(p.Omega1, 0), sys.P1),
			linalg.Scale(complex(p.Omega2, 0), sys.P2),
		),
		linalg.Scale(complex(p.Omega3, 0), sys.P3),
	)
	coupling := linalg.Add(
		linalg.Mul(adag, l12),
		linalg.Mul(sys.A, linalg.Dagger(l12)),
	)
	sys.H = linalg.Add(h, linalg.Scale(complex(p.G, 0), coupling))

	r := sys.Rates
	weighted := func(rate float64, op *linalg.Matrix) *linalg.Matrix {
		return linalg.Scale(complex(math.Sqrt(rate), 0), op)
	}
	sys.Jumps = []*linalg.Matrix{
		weighted(r.HotEmit, l13),
		weighted(r.HotAbsorb, linalg.Dagger(l13)),
		weighted(r.ColdEmit, l23),
		weighted(r.ColdAbsorb, linalg.Dagger(l23)),
		weighted(r.CavEmit, sys.A),
		weighted(r.CavAbsorb, adag),
	}

	return sys, nil
}

// InitialState is the atom in its ground level with the cavity in
// vacuum, a pure product state of trace one.
func (s *System) InitialState() *linalg.Matrix {
	atom, _ := quantum.PureState(quantum.AtomDim, 1)
	vac, _ := quantum.PureState(s.Params.Nph+1, 1)
	return quantum.ProductState(atom, vac)
}

// Observables returns the sampled operators in output order.
func (s *System) Observables() []sample.Observable {
	return []sample.Observable{
		{Name: "population1", Op: s.P1},
		{Name: "population2", Op: s.P2},
		{Name: "population3", Op: s.P3},
		{Name: "photon_number", Op: s.Num},
		{Name: "photon_number_squared_term", Op: s.Num2},
	}
}
