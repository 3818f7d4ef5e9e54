package maser

import "math"

// Occupation is the Bose-Einstein thermal occupation 1/(exp(w/T)-1).
// T = 0 is special-cased to exactly 0; evaluating the formula there
// would divide by a diverging exponential and produce NaN.
func Occupation(omega, temp float64) float64 {
	if temp == 0 {
		return 0
	}
	return 1 / (math.Expm1(omega / temp))
}

// Rates are the six dissipation channel strengths, two per bath.
type Rates struct {
	HotEmit    float64 // gammaH * (n(wh,Th)+1), jump sigma13
	HotAbsorb  float64 // gammaH * n(wh,Th),     jump sigma13†
	ColdEmit   float64 // gammaC * (n(wc,Tc)+1), jump sigma23
	ColdAbsorb float64 // gammaC * n(wc,Tc),     jump sigma23†
	CavEmit    float64 // 2*kappa * (n(wf,Tenv)+1), jump a
	CavAbsorb  float64 // 2*kappa * n(wf,Tenv),     jump a†
}

// ComputeRates evaluates the thermal occupations at the three
// transition frequencies and folds them into channel rates.
func (p Params) ComputeRates() Rates {
	nh := Occupation(p.OmegaH(), p.TH)
	nc := Occupation(p.OmegaC(), p.TC)
	nf := Occupation(p.OmegaF(), p.TEnv)

	return Rates{
		HotEmit:    p.GammaH * (nh + 1),
		HotAbsorb:  p.GammaH * nh,
		ColdEmit:   p.GammaC * (nc + 1),
		ColdAbsorb: p.GammaC * nc,
		CavEmit:    2 * p.Kappa * (nf + 1),
		CavAbsorb:  2 * p.Kappa * nf,
	}
}

// All returns the rates in channel order.
func (r Rates) All() []float64 {
	return []float64{r.HotEmit, r.HotAbsorb, r.ColdEmit, r.ColdAbsorb, r.CavEmit, r.CavAbsorb}
}
