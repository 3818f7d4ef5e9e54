package maser

import (
	"math"
	"testing"
)

func TestOccupationZeroTemperature(t *testing.T) {
	if n := Occupation(150, 0); n != 0 {
		t.Errorf("n(150, 0) = %v, want exactly 0", n)
	}
	if n := Occupation(150, 0); math.IsNaN(n) {
		t.Error("zero temperature produced NaN")
	}
}

func TestOccupationLimits(t *testing.T) {
	// monotone vanishing as T -> 0+
	prev := math.Inf(1)
	for _, temp := range []float64{10, 1, 0.1, 0.01} {
		n := Occupation(5, temp)
		if n < 0 || n >= prev {
			t.Fatalf("occupation not decreasing towards 0: n(5,%v)=%v", temp, n)
		}
		prev = n
	}
	if prev > 1e-100 {
		t.Errorf("occupation at T=0.01 should be vanishingly small, got %v", prev)
	}

	// classical limit n ≈ T/w for T >> w
	n := Occupation(1, 1000)
	if math.Abs(n-1000)/1000 > 1e-3 {
		t.Errorf("classical limit violated: n(1,1000) = %v", n)
	}
}

func TestComputeRatesReference(t *testing.T) {
	p := Reference()
	r := p.ComputeRates()

	nh := 1 / (math.Exp(150.0/100.0) - 1)
	nc := 1 / (math.Exp(120.0/20.0) - 1)

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"hot emit", r.HotEmit, 40 * (nh + 1)},
		{"hot absorb", r.HotAbsorb, 40 * nh},
		{"cold emit", r.ColdEmit, 40 * (nc + 1)},
		{"cold absorb", r.ColdAbsorb, 40 * nc},
		{"cavity emit", r.CavEmit, 2 * 0.1},
		{"cavity absorb", r.CavAbsorb, 0},
	}
	for _, c := range cases {
		if math.Abs(c.got-c.want) > 1e-12*math.Max(1, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	for i, v := range r.All() {
		if v < 0 {
			t.Errorf("rate %d negative: %v", i, v)
		}
	}
}

func TestValidate(t *testing.T) {
	good := Reference()
	if err := good.Validate(); err != nil {
		t.Fatalf("reference parameters rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative nph", func(p *Params) { p.Nph = -1 }},
		{"negative hot temperature", func(p *Params) { p.TH = -1 }},
		{"negative cold temperature", func(p *Params) { p.TC = -1 }},
		{"negative env temperature", func(p *Params) { p.TEnv = -0.5 }},
		{"negative kappa", func(p *Params) { p.Kappa = -0.1 }},
		{"negative gamma_h", func(p *Params) { p.GammaH = -1 }},
		{"negative gamma_c", func(p *Params) { p.GammaC = -1 }},
		{"inverted hot transition", func(p *Params) { p.Omega3 = -10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Reference()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDim(t *testing.T) {
	p := Reference()
	if p.Dim() != 33 {
		t.Errorf("dim = %d, want 33", p.Dim())
	}
}
