package lindblad

import (
	"math/cmplx"
	"testing"

	"github.com/san-kum/masersim/internal/linalg"
)

func TestLiouvillianDimensionMismatch(t *testing.T) {
	h := linalg.Identity(4)
	j := linalg.Identity(3)
	if _, err := NewLiouvillian(h, []*linalg.Matrix{j}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestLiouvillianPreservesTrace(t *testing.T) {
	// Tr(drho/dt) = 0 for any Lindblad generator.
	n := 4
	h := linalg.New(n)
	h.Set(0, 0, 1)
	h.Set(1, 1, 3)
	h.Set(0, 2, 0.5+0.25i)
	h.Set(2, 0, 0.5-0.25i)

	j := linalg.New(n)
	j.Set(0, 1, 1.2)
	j.Set(2, 3, 0.7)

	lv, err := NewLiouvillian(h, []*linalg.Matrix{j})
	if err != nil {
		t.Fatal(err)
	}

	rho := linalg.New(n)
	rho.Set(0, 0, 0.4)
	rho.Set(1, 1, 0.3)
	rho.Set(2, 2, 0.3)
	rho.Set(1, 2, 0.1+0.05i)
	rho.Set(2, 1, 0.1-0.05i)

	d := lv.Derivative(0, rho)
	if tr := linalg.Trace(d); cmplx.Abs(tr) > 1e-14 {
		t.Errorf("Tr(drho/dt) = %v, want 0", tr)
	}
}

func TestLiouvillianPreservesHermiticity(t *testing.T) {
	n := 3
	h := linalg.New(n)
	h.Set(0, 1, 1i)
	h.Set(1, 0, -1i)

	j := linalg.New(n)
	j.Set(0, 2, 2)

	lv, err := NewLiouvillian(h, []*linalg.Matrix{j})
	if err != nil {
		t.Fatal(err)
	}

	rho := linalg.New(n)
	rho.Set(0, 0, 0.5)
	rho.Set(2, 2, 0.5)
	rho.Set(0, 2, 0.2-0.1i)
	rho.Set(2, 0, 0.2+0.1i)

	d := lv.Derivative(0, rho)
	if !linalg.IsHermitian(d, 1e-14) {
		t.Error("derivative of a hermitian state should stay hermitian")
	}
}
