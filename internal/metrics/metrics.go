// Package metrics provides per-run scalar diagnostics over the sampled
// density matrices.
package metrics

import (
	"math"

	"github.com/san-kum/masersim/internal/linalg"
)

// TraceDrift tracks the largest |Tr(rho)-1| seen during a run.
type TraceDrift struct {
	max float64
}

func NewTraceDrift() *TraceDrift { return &TraceDrift{} }

func (d *TraceDrift) Name() string { return "trace_drift" }

func (d *TraceDrift) Observe(t float64, rho *linalg.Matrix) {
	drift := math.Abs(real(linalg.Trace(rho)) - 1)
	if drift > d.max {
		d.max = drift
	}
}

func (d *TraceDrift) Value() float64 { return d.max }

func (d *TraceDrift) Reset() { d.max = 0 }

// HermiticityDefect tracks the largest deviation from rho = rho†.
type HermiticityDefect struct {
	max float64
}

func NewHermiticityDefect() *HermiticityDefect { return &HermiticityDefect{} }

func (h *HermiticityDefect) Name() string { return "hermiticity_defect" }

func (h *HermiticityDefect) Observe(t float64, rho *linalg.Matrix) {
	d := linalg.HermitianDefect(rho)
	if d > h.max {
		h.max = d
	}
}

func (h *HermiticityDefect) Value() float64 { return h.max }

func (h *HermiticityDefect) Reset() { h.max = 0 }

// Purity reports Tr(rho²) of the last sampled state; 1 for a pure
// state, 1/dim for the maximally mixed one.
type Purity struct {
	last float64
}

func NewPurity() *Purity { return &Purity{} }

func (p *Purity) Name() string { return "purity" }

func (p *Purity) Observe(t float64, rho *linalg.Matrix) {
	p.last = real(linalg.Trace(linalg.Mul(rho, rho)))
}

func (p *Purity) Value() float64 { return p.last }

func (p *Purity) Reset() { p.last = 0 }

// PhotonGain reports the change in <a†a> between the first and last
// sampled states. Positive values mean the cavity gained photons.
type PhotonGain struct {
	num     *linalg.Matrix
	first   float64
	last    float64
	samples int
}

func NewPhotonGain(num *linalg.Matrix) *PhotonGain {
	return &PhotonGain{num: num}
}

func (g *PhotonGain) Name() string { return "photon_gain" }

func (g *PhotonGain) Observe(t float64, rho *linalg.Matrix) {
	n := real(linalg.Expect(g.num, rho))
	if g.samples == 0 {
		g.first = n
	}
	g.last = n
	g.samples++
}

func (g *PhotonGain) Value() float64 {
	if g.samples == 0 {
		return 0
	}
	return g.last - g.first
}

func (g *PhotonGain) Reset() {
	g.first = 0
	g.last = 0
	g.samples = 0
}
