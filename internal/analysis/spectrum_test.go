package analysis

import (
	"math"
	"testing"
)

func TestPowerSpectrumSine(t *testing.T) {
	const (
		freq = 2.0
		dt   = 1.0 / 64.0
		n    = 256
	)

	values := make([]float64, n)
	for i := range values {
		values[i] = 3.0 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}

	s, err := PowerSpectrum(values, dt)
	if err != nil {
		t.Fatalf("PowerSpectrum: %v", err)
	}

	peak, power := s.Peak()
	if math.Abs(peak-freq) > 1.0/(float64(n)*dt) {
		t.Errorf("peak frequency = %g, want %g", peak, freq)
	}
	if power < 0.4 {
		t.Errorf("peak power = %g, want about 0.5", power)
	}

	// Mean subtraction should leave almost nothing in the DC bin.
	if s.Power[0] > 1e-9 {
		t.Errorf("DC power = %g, want ~0", s.Power[0])
	}
}

func TestPowerSpectrumErrors(t *testing.T) {
	if _, err := PowerSpectrum([]float64{1, 2, 3, 4}, 0); err == nil {
		t.Error("expected error for zero dt")
	}
	if _, err := PowerSpectrum([]float64{1, 2}, 0.1); err == nil {
		t.Error("expected error for short series")
	}
}
