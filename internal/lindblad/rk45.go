package lindblad

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/masersim/internal/linalg"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// AdaptiveStepper advances by at most dt, shrinking until the local
// error estimate is within tol. It returns the step actually taken
// and a suggestion for the next one.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(dyn Dynamics, rho *linalg.Matrix, t, dt, tol float64) (next *linalg.Matrix, used, suggest float64, err error)
}

// RK45 is an embedded Dormand-Prince pair with error-based step
// control over the matrix entries.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step advances by the full dt unconditionally, taking the fifth-order
// solution without error control. Stiff systems should go through
// StepAdaptive instead.
func (r *RK45) Step(dyn Dynamics, rho *linalg.Matrix, t, dt float64) *linalg.Matrix {
	out, _ := r.attempt(dyn, rho, t, dt)
	return out
}

// StepAdaptive attempts dt and halves down on rejection until the
// embedded error estimate passes, then suggests the next step size.
func (r *RK45) StepAdaptive(dyn Dynamics, rho *linalg.Matrix, t, dt, tol float64) (*linalg.Matrix, float64, float64, error) {
	h := dt
	for attempt := 0; attempt < maxShrinks; attempt++ {
		xNew, errMax := r.attempt(dyn, rho, t, h)
		errRatio := errMax / tol

		if errRatio > 1 {
			scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			h *= scale
			continue
		}

		var suggest float64
		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			suggest = h * scale
		} else {
			suggest = h * r.maxScale
		}
		return xNew, h, suggest, nil
	}
	return nil, 0, 0, fmt.Errorf("step rejected %d times at t=%.6f", maxShrinks, t)
}

const maxShrinks = 30

func (r *RK45) attempt(dyn Dynamics, rho *linalg.Matrix, t, dt float64) (*linalg.Matrix, float64) {
	n := rho.N
	h := complex(dt, 0)

	k1 := dyn.Derivative(t, rho)

	x2 := linalg.New(n)
	for i := range rho.Data {
		x2.Data[i] = rho.Data[i] + h*complex(b21, 0)*k1.Data[i]
	}
	k2 := dyn.Derivative(t+a2*dt, x2)

	x3 := linalg.New(n)
	for i := range rho.Data {
		x3.Data[i] = rho.Data[i] + h*(complex(b31, 0)*k1.Data[i]+complex(b32, 0)*k2.Data[i])
	}
	k3 := dyn.Derivative(t+a3*dt, x3)

	x4 := linalg.New(n)
	for i := range rho.Data {
		x4.Data[i] = rho.Data[i] + h*(complex(b41, 0)*k1.Data[i]+complex(b42, 0)*k2.Data[i]+complex(b43, 0)*k3.Data[i])
	}
	k4 := dyn.Derivative(t+a4*dt, x4)

	x5 := linalg.New(n)
	for i := range rho.Data {
		x5.Data[i] = rho.Data[i] + h*(complex(b51, 0)*k1.Data[i]+complex(b52, 0)*k2.Data[i]+complex(b53, 0)*k3.Data[i]+complex(b54, 0)*k4.Data[i])
	}
	k5 := dyn.Derivative(t+a5*dt, x5)

	x6 := linalg.New(n)
	for i := range rho.Data {
		x6.Data[i] = rho.Data[i] + h*(complex(b61, 0)*k1.Data[i]+complex(b62, 0)*k2.Data[i]+complex(b63, 0)*k3.Data[i]+complex(b64, 0)*k4.Data[i]+complex(b65, 0)*k5.Data[i])
	}
	k6 := dyn.Derivative(t+dt, x6)

	xNew := linalg.New(n)
	for i := range rho.Data {
		xNew.Data[i] = rho.Data[i] + h*(complex(c1, 0)*k1.Data[i]+complex(c3, 0)*k3.Data[i]+complex(c4, 0)*k4.Data[i]+complex(c5, 0)*k5.Data[i]+complex(c6, 0)*k6.Data[i])
	}

	k7 := dyn.Derivative(t+dt, xNew)

	errMax := 0.0
	for i := range rho.Data {
		errEst := h * (complex(dc1, 0)*k1.Data[i] + complex(dc3, 0)*k3.Data[i] + complex(dc4, 0)*k4.Data[i] + complex(dc5, 0)*k5.Data[i] + complex(dc6, 0)*k6.Data[i] + complex(dc7, 0)*k7.Data[i])
		scale := cmplx.Abs(rho.Data[i]) + cmplx.Abs(h*k1.Data[i]) + 1e-10
		errMax = math.Max(errMax, cmplx.Abs(errEst)/scale)
	}

	return xNew, errMax
}
