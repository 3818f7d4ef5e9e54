// Package lindblad integrates the Lindblad master equation
//
//	drho/dt = -i[H,rho] + sum_k ( J_k rho J_k† - ½{J_k†J_k, rho} )
//
// over a uniform output grid, invoking a sampling visitor at every
// output time.
package lindblad

import (
	"github.com/san-kum/masersim/internal/linalg"
)

// Dynamics supplies the right-hand side of the master equation.
type Dynamics interface {
	Derivative(t float64, rho *linalg.Matrix) *linalg.Matrix
	Dim() int
}

type jump struct {
	op    *linalg.Matrix
	opDag *linalg.Matrix
	dagOp *linalg.Matrix // J†J
}

// Liouvillian is the generator of the master equation for a fixed
// Hamiltonian and jump operator set. The adjoints and J†J products are
// precomputed once; rates are assumed folded into the jump operators.
type Liouvillian struct {
	h     *linalg.Matrix
	jumps []jump
}

func NewLiouvillian(h *linalg.Matrix, jumps []*linalg.Matrix) (*Liouvillian, error) {
	l := &Liouvillian{h: h}
	for _, j := range jumps {
		if err := linalg.SameDim(h, j); err != nil {
			return nil, err
		}
		dag := linalg.Dagger(j)
		l.jumps = append(l.jumps, jump{
			op:    j,
			opDag: dag,
			dagOp: linalg.Mul(dag, j),
		})
	}
	return l, nil
}

func (l *Liouvillian) Dim() int { return l.h.N }

// Derivative evaluates drho/dt. Rates are time independent, so t is
// unused, but the integrators pass it through.
func (l *Liouvillian) Derivative(t float64, rho *linalg.Matrix) *linalg.Matrix {
	d := linalg.Scale(-1i, linalg.Commutator(l.h, rho))

	for _, j := range l.jumps {
		sandwich := linalg.Mul(linalg.Mul(j.op, rho), j.opDag)
		anti := linalg.Add(linalg.Mul(j.dagOp, rho), linalg.Mul(rho, j.dagOp))
		d = linalg.Add(d, linalg.Sub(sandwich, linalg.Scale(0.5, anti)))
	}

	return d
}
