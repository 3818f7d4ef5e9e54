// Package analysis provides frequency-domain analysis of recorded
// expectation-value series.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Spectrum is a one-sided power spectrum of a uniformly sampled series.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, data)
		return out
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = feven[k] + w*fodd[k]
		out[k+n/2] = feven[k] - w*fodd[k]
	}
	return out
}

// PowerSpectrum computes the one-sided power spectrum of values sampled
// at interval dt. The series is mean-subtracted and truncated to the
// largest power-of-two length, so the DC peak does not swamp the
// oscillatory content.
func PowerSpectrum(values []float64, dt float64) (*Spectrum, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("analysis: sample interval must be positive, got %g", dt)
	}
	if len(values) < 4 {
		return nil, fmt.Errorf("analysis: need at least 4 samples, got %d", len(values))
	}

	n := 1
	for n*2 <= len(values) {
		n *= 2
	}

	mean := 0.0
	for _, v := range values[:n] {
		mean += v
	}
	mean /= float64(n)

	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[i] = complex(values[i]-mean, 0)
	}

	coeffs := fft(buf)

	s := &Spectrum{
		Freq:  make([]float64, n/2),
		Power: make([]float64, n/2),
	}
	for k := 0; k < n/2; k++ {
		s.Freq[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return s, nil
}

// Peak returns the frequency and power of the strongest non-DC component.
func (s *Spectrum) Peak() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			power = s.Power[k]
			freq = s.Freq[k]
		}
	}
	return freq, power
}
