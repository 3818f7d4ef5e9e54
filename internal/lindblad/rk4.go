package lindblad

import "github.com/san-kum/masersim/internal/linalg"

// Stepper advances the density matrix by one fixed step.
type Stepper interface {
	Step(dyn Dynamics, rho *linalg.Matrix, t, dt float64) *linalg.Matrix
}

// RK4 is the classical fourth-order Runge-Kutta stepper over the
// matrix entries, with reusable scratch storage.
type RK4 struct {
	scratch *linalg.Matrix
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if r.scratch == nil || r.scratch.N != n {
		r.scratch = linalg.New(n)
	}
}

func (r *RK4) Step(dyn Dynamics, rho *linalg.Matrix, t, dt float64) *linalg.Matrix {
	n := rho.N
	r.ensureScratch(n)
	hdt := complex(dt, 0)

	k1 := dyn.Derivative(t, rho)

	for i := range rho.Data {
		r.scratch.Data[i] = rho.Data[i] + hdt*0.5*k1.Data[i]
	}
	k2 := dyn.Derivative(t+dt*0.5, r.scratch)

	for i := range rho.Data {
		r.scratch.Data[i] = rho.Data[i] + hdt*0.5*k2.Data[i]
	}
	k3 := dyn.Derivative(t+dt*0.5, r.scratch)

	for i := range rho.Data {
		r.scratch.Data[i] = rho.Data[i] + hdt*k3.Data[i]
	}
	k4 := dyn.Derivative(t+dt, r.scratch)

	result := linalg.New(n)
	dt6 := hdt / 6.0
	for i := range rho.Data {
		result.Data[i] = rho.Data[i] + dt6*(k1.Data[i]+2*k2.Data[i]+2*k3.Data[i]+k4.Data[i])
	}

	return result
}
