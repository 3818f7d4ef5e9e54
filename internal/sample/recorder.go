// Package sample records expectation values and density-matrix
// snapshots while the solver runs.
package sample

import (
	"fmt"
	"math"

	"github.com/san-kum/masersim/internal/linalg"
)

// Observable pairs a name with a fixed operator. The recorder keeps
// the injected order for output.
type Observable struct {
	Name string
	Op   *linalg.Matrix
}

// Record holds the expectation values at one output time.
type Record struct {
	T      float64
	Values map[string]complex128
}

// Snapshot is a deep copy of the state at a coarse-grid time.
type Snapshot struct {
	T   float64
	Rho *linalg.Matrix
}

// Recorder computes Tr(O rho) for every observable at every visited
// time and captures snapshots on a coarse grid. Snapshot times are
// matched by precomputed fine-grid step index rather than floating
// point comparison of times; a coarse target that misses the fine grid
// beyond tolerance is reported through Missed and its slot stays
// unfilled.
type Recorder struct {
	observables []Observable
	records     []Record

	schedule  map[int]bool // fine step index -> pending snapshot
	snapshots []Snapshot
	missed    []float64
}

// NewRecorder precomputes the snapshot schedule from the fine step dt
// and snapshot spacing snapDt over the given duration. The absolute
// alignment tolerance tol guards against drift in the supplied grid
// spacings; 0 selects 1e-9.
func NewRecorder(obs []Observable, dt, duration, snapDt, tol float64) (*Recorder, []float64, error) {
	if dt <= 0 {
		return nil, nil, fmt.Errorf("dt must be positive, got %f", dt)
	}
	if snapDt < 0 {
		return nil, nil, fmt.Errorf("snapshot spacing must be >= 0, got %f", snapDt)
	}
	if tol == 0 {
		tol = 1e-9
	}

	r := &Recorder{
		observables: obs,
		schedule:    make(map[int]bool),
	}

	var missed []float64
	if snapDt > 0 {
		lastStep := int(math.Round(duration / dt))
		n := int(math.Round(duration/snapDt)) + 1
		for k := 0; k < n; k++ {
			target := snapDt * float64(k)
			idx := int(math.Round(target / dt))
			// An index past the last grid step is never visited, so the
			// slot would stay empty without showing up in Missed.
			if idx > lastStep || math.Abs(float64(idx)*dt-target) > tol {
				r.missed = append(r.missed, target)
				missed = append(missed, target)
				continue
			}
			r.schedule[idx] = true
		}
	}

	return r, missed, nil
}

// Visit implements the solver's sampling callback. The returned error
// is always nil; the signature matches the visitor contract.
func (r *Recorder) Visit(step int, t float64, rho *linalg.Matrix) error {
	values := make(map[string]complex128, len(r.observables))
	for _, o := range r.observables {
		values[o.Name] = linalg.Expect(o.Op, rho)
	}
	r.records = append(r.records, Record{T: t, Values: values})

	if r.schedule[step] {
		delete(r.schedule, step) // each slot fills at most once
		r.snapshots = append(r.snapshots, Snapshot{T: t, Rho: rho.Clone()})
	}

	return nil
}

// Observables returns the injected observables in order.
func (r *Recorder) Observables() []Observable { return r.observables }

// Records returns the expectation-value series in time order.
func (r *Recorder) Records() []Record { return r.records }

// Snapshots returns the captured snapshots in time order.
func (r *Recorder) Snapshots() []Snapshot { return r.snapshots }

// Missed returns coarse-grid targets that did not align with the fine
// grid. Non-empty means snapshot coverage is incomplete.
func (r *Recorder) Missed() []float64 { return r.missed }

// Series extracts the real part of one observable over time.
func (r *Recorder) Series(name string) []float64 {
	out := make([]float64, len(r.records))
	for i, rec := range r.records {
		out[i] = real(rec.Values[name])
	}
	return out
}

// Times returns the visited output times.
func (r *Recorder) Times() []float64 {
	out := make([]float64, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.T
	}
	return out
}
