package lindblad

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/masersim/internal/linalg"
)

// SweepRun is one member of a parameter sweep: its own generator, initial
// state, and metrics. Metrics must not be shared between runs.
type SweepRun struct {
	Label   string
	Dyn     Dynamics
	Rho0    *linalg.Matrix
	Metrics []Metric
}

// RunSweep integrates every member concurrently, one goroutine per run.
// newStepper is called once per run so stepper scratch buffers are never
// shared. The first error aborts the whole sweep.
func RunSweep(ctx context.Context, runs []SweepRun, newStepper func() Stepper, cfg Config) ([]*Result, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("sweep: no runs")
	}

	results := make([]*Result, len(runs))
	errs := make([]error, len(runs))

	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r := runs[idx]
			solver := NewSolver(r.Dyn, newStepper())
			for _, m := range r.Metrics {
				solver.AddMetric(m)
			}

			results[idx], errs[idx] = solver.Run(ctx, r.Rho0, cfg, nil)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep: run %q: %w", runs[i].Label, err)
		}
	}
	return results, nil
}
