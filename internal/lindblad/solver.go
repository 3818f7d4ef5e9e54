package lindblad

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/masersim/internal/linalg"
)

// Visitor is called synchronously at every output time, t = 0
// included, before the solver moves on to the next step. Internal
// substeps between output times do not invoke it.
type Visitor interface {
	Visit(step int, t float64, rho *linalg.Matrix) error
}

// Metric accumulates a scalar over the sampled states.
type Metric interface {
	Name() string
	Observe(t float64, rho *linalg.Matrix)
	Value() float64
	Reset()
}

type Config struct {
	Dt        float64 // output grid spacing
	Duration  float64
	Adaptive  bool
	Tolerance float64 // local error tolerance for adaptive stepping

	// RenormTolerance triggers a defensive trace renormalization when
	// |Tr(rho)-1| drifts beyond it. Zero selects the default 1e-8.
	RenormTolerance float64
}

// Result summarizes one run; the sampled data itself lives with the
// visitor.
type Result struct {
	Times        []float64
	StepsTaken   int
	Renormalized int
	Metrics      map[string]float64
}

// IntegrationError reports solver failure with the last valid time.
type IntegrationError struct {
	T       float64
	Step    int
	Message string
}

func (e IntegrationError) Error() string {
	return fmt.Sprintf("integration failed after t=%.6f (step %d): %s", e.T, e.Step, e.Message)
}

// Solver owns the stepping loop for one generator.
type Solver struct {
	dyn     Dynamics
	stepper Stepper
	metrics []Metric
}

func NewSolver(dyn Dynamics, stepper Stepper) *Solver {
	return &Solver{dyn: dyn, stepper: stepper}
}

func (s *Solver) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Solver) validate(rho0 *linalg.Matrix, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if rho0.N != s.dyn.Dim() {
		return fmt.Errorf("initial state dim %d does not match generator dim %d", rho0.N, s.dyn.Dim())
	}
	if !linalg.IsHermitian(rho0, 1e-8) {
		return fmt.Errorf("initial state is not hermitian")
	}
	if tr := linalg.Trace(rho0); math.Abs(real(tr)-1) > 1e-8 || math.Abs(imag(tr)) > 1e-8 {
		return fmt.Errorf("initial state trace %v, want 1", tr)
	}
	return nil
}

// Run integrates rho from t=0 to cfg.Duration on the uniform output
// grid, visiting every output time in order. The visitor sees t=0
// first with a state identical to rho0. A nil visitor records nothing.
func (s *Solver) Run(ctx context.Context, rho0 *linalg.Matrix, cfg Config, visitor Visitor) (*Result, error) {
	if err := s.validate(rho0, cfg); err != nil {
		return nil, err
	}

	renormTol := cfg.RenormTolerance
	if renormTol == 0 {
		renormTol = 1e-8
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rho := rho0.Clone()

	sample := func(step int, t float64) error {
		for _, m := range s.metrics {
			m.Observe(t, rho)
		}
		result.Times = append(result.Times, t)
		if visitor == nil {
			return nil
		}
		return visitor.Visit(step, t, rho)
	}

	if err := sample(0, 0); err != nil {
		return result, err
	}

	h := cfg.Dt // adaptive substep carried across output intervals
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		prev := cfg.Dt * float64(i-1)
		target := cfg.Dt * float64(i)

		var err error
		if cfg.Adaptive {
			h, err = s.advanceAdaptive(&rho, prev, target, h, cfg.Tolerance)
		} else {
			rho = s.stepper.Step(s.dyn, rho, prev, cfg.Dt)
		}
		if err != nil {
			return result, err
		}

		if !rho.IsFinite() {
			return result, IntegrationError{T: prev, Step: i, Message: "non-finite state"}
		}

		// Trace is conserved analytically; renormalize only when the
		// numerical drift exceeds tolerance.
		if tr := real(linalg.Trace(rho)); math.Abs(tr-1) > renormTol && tr != 0 {
			inv := complex(1/tr, 0)
			for k := range rho.Data {
				rho.Data[k] *= inv
			}
			result.Renormalized++
		}

		result.StepsTaken++
		if err := sample(i, target); err != nil {
			return result, err
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// advanceAdaptive substeps from t to target without visiting, carrying
// the suggested step size between calls.
func (s *Solver) advanceAdaptive(rho **linalg.Matrix, t, target, h, tol float64) (float64, error) {
	adaptive, ok := s.stepper.(AdaptiveStepper)
	if !ok {
		// Fall back to halved fixed steps when the stepper has no
		// embedded error estimate.
		half := (target - t) / 2
		*rho = s.stepper.Step(s.dyn, *rho, t, half)
		*rho = s.stepper.Step(s.dyn, *rho, t+half, half)
		return h, nil
	}

	minStep := (target - t) * 1e-10
	cur := t
	for cur < target {
		if h > target-cur {
			h = target - cur
		}
		if h < minStep {
			return h, IntegrationError{T: cur, Message: "step size underflow"}
		}
		next, used, suggest, err := adaptive.StepAdaptive(s.dyn, *rho, cur, h, tol)
		if err != nil {
			return h, IntegrationError{T: cur, Message: err.Error()}
		}
		*rho = next
		cur += used
		h = suggest
	}
	return h, nil
}
