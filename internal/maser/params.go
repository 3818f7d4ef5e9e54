// Package maser defines the physical model of the three-level maser:
// parameters, thermal rates, Hamiltonian and jump operators. Units use
// the hbar = kB = 1 convention throughout.
package maser

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter marks non-physical inputs rejected before a run.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params is the immutable parameter set of one run.
type Params struct {
	Nph int // cavity Fock truncation, dimension is Nph+1

	Omega1 float64 // atomic level energies
	Omega2 float64
	Omega3 float64

	G     float64 // atom-cavity coupling on the 1<->2 transition
	Kappa float64 // cavity loss rate

	GammaH float64 // hot bath coupling (1<->3)
	GammaC float64 // cold bath coupling (2<->3)

	TH   float64 // hot bath temperature
	TC   float64 // cold bath temperature
	TEnv float64 // cavity environment temperature
}

// Reference returns the parameter set of the canonical maser run.
func Reference() Params {
	return Params{
		Nph:    10,
		Omega1: 0,
		Omega2: 30,
		Omega3: 150,
		G:      5,
		Kappa:  0.1,
		GammaH: 40,
		GammaC: 40,
		TH:     100,
		TC:     20,
		TEnv:   0,
	}
}

// OmegaH is the hot-bath transition frequency omega3 - omega1.
func (p Params) OmegaH() float64 { return p.Omega3 - p.Omega1 }

// OmegaC is the cold-bath transition frequency omega3 - omega2.
func (p Params) OmegaC() float64 { return p.Omega3 - p.Omega2 }

// OmegaF is the cavity (lasing) frequency omega2 - omega1.
func (p Params) OmegaF() float64 { return p.Omega2 - p.Omega1 }

func (p Params) Validate() error {
	if p.Nph < 0 {
		return fmt.Errorf("%w: nph must be >= 0, got %d", ErrInvalidParameter, p.Nph)
	}
	if p.TH < 0 || p.TC < 0 || p.TEnv < 0 {
		return fmt.Errorf("%w: temperatures must be >= 0", ErrInvalidParameter)
	}
	if p.GammaH < 0 || p.GammaC < 0 || p.Kappa < 0 {
		return fmt.Errorf("%w: decay rates must be >= 0", ErrInvalidParameter)
	}
	if p.TH > 0 && p.OmegaH() <= 0 {
		return fmt.Errorf("%w: hot transition frequency must be positive for TH > 0", ErrInvalidParameter)
	}
	if p.TC > 0 && p.OmegaC() <= 0 {
		return fmt.Errorf("%w: cold transition frequency must be positive for TC > 0", ErrInvalidParameter)
	}
	if p.TEnv > 0 && p.OmegaF() <= 0 {
		return fmt.Errorf("%w: cavity frequency must be positive for TEnv > 0", ErrInvalidParameter)
	}
	return nil
}

// Dim is the composite Hilbert space dimension 3*(Nph+1).
func (p Params) Dim() int { return 3 * (p.Nph + 1) }
