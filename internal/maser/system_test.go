package maser

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/masersim/internal/linalg"
)

func TestNewSystemRejectsBadParams(t *testing.T) {
	p := Reference()
	p.Nph = -2
	if _, err := NewSystem(p); err == nil {
		t.Fatal("expected error for negative truncation")
	}
}

func TestHamiltonianHermitian(t *testing.T) {
	sys, err := NewSystem(Reference())
	if err != nil {
		t.Fatal(err)
	}
	if sys.H.N != 33 {
		t.Fatalf("hamiltonian dim = %d, want 33", sys.H.N)
	}
	if !linalg.IsHermitian(sys.H, 1e-12) {
		t.Error("hamiltonian is not hermitian")
	}
}

func TestJumpOperatorWeights(t *testing.T) {
	p := Reference()
	sys, err := NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(sys.Jumps) != 6 {
		t.Fatalf("expected 6 jump operators, got %d", len(sys.Jumps))
	}

	// Tr(J†J) recovers rate * Tr(O†O); the bare channel operators have
	// Tr(O†O) = nph+1 for the atomic channels.
	r := sys.Rates
	cav := float64(p.Nph + 1)
	for i, want := range []float64{r.HotEmit * cav, r.HotAbsorb * cav, r.ColdEmit * cav, r.ColdAbsorb * cav} {
		j := sys.Jumps[i]
		got := real(linalg.Trace(linalg.Mul(linalg.Dagger(j), j)))
		if math.Abs(got-want) > 1e-9*math.Max(1, want) {
			t.Errorf("jump %d: Tr(J†J) = %v, want %v", i, got, want)
		}
	}

	// cavity absorption vanishes at TEnv = 0
	j := sys.Jumps[5]
	if tr := real(linalg.Trace(linalg.Mul(linalg.Dagger(j), j))); tr != 0 {
		t.Errorf("cavity absorption jump should vanish at TEnv=0, Tr(J†J) = %v", tr)
	}
}

func TestInitialState(t *testing.T) {
	sys, err := NewSystem(Reference())
	if err != nil {
		t.Fatal(err)
	}
	rho := sys.InitialState()

	if cmplx.Abs(linalg.Trace(rho)-1) > 1e-15 {
		t.Errorf("initial trace = %v, want 1", linalg.Trace(rho))
	}
	if !linalg.IsHermitian(rho, 1e-15) {
		t.Error("initial state not hermitian")
	}
	// ground atom, empty cavity
	if real(linalg.Expect(sys.P1, rho)) != 1 {
		t.Error("atom should start in level 1")
	}
	if real(linalg.Expect(sys.Num, rho)) != 0 {
		t.Error("cavity should start in vacuum")
	}
}

func TestObservablesOrder(t *testing.T) {
	sys, err := NewSystem(Reference())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"population1", "population2", "population3", "photon_number", "photon_number_squared_term"}
	obs := sys.Observables()
	if len(obs) != len(want) {
		t.Fatalf("got %d observables, want %d", len(obs), len(want))
	}
	for i, o := range obs {
		if o.Name != want[i] {
			t.Errorf("observable %d = %s, want %s", i, o.Name, want[i])
		}
	}
}

func TestCouplingMovesExcitation(t *testing.T) {
	// With only the coherent coupling active, an atom in level 2 with
	// an empty cavity oscillates towards level 1 plus one photon.
	p := Params{
		Nph: 2, Omega1: 0, Omega2: 30, Omega3: 150,
		G: 5, Kappa: 0, GammaH: 0, GammaC: 0,
	}
	sys, err := NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}

	// |2, 0> ket index: atom level 2 (index 1), cavity 0
	dim := p.Dim()
	ket := 1 * (p.Nph + 1)
	rho := linalg.New(dim)
	rho.Set(ket, ket, 1)

	// d<P2>/dt = 0 at t=0 but d²/dt² < 0: one small unitary step of the
	// commutator should transfer population 2 -> 1.
	d1 := linalg.Scale(-1i, linalg.Commutator(sys.H, rho))
	d2 := linalg.Scale(-1i, linalg.Commutator(sys.H, d1))
	accel := real(linalg.Expect(sys.P2, d2))
	if accel >= 0 {
		t.Errorf("d²<P2>/dt² = %v, want negative (Rabi transfer)", accel)
	}
}
