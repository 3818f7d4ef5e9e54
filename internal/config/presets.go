package config

import (
	"sort"

	"github.com/san-kum/masersim/internal/maser"
)

var Presets = map[string]*Config{
	// Canonical maser run: population inversion on the lasing
	// transition and photon gain in the cavity.
	"reference": {
		Integrator: "rk45", Adaptive: true,
		Dt: 0.1, Duration: 50.0, SnapshotDt: 10.0, Tolerance: 1e-8,
		Physics: FromParams(maser.Reference()),
	},
	// Both baths at the cold temperature: no inversion, thermal cavity.
	"thermal": {
		Integrator: "rk45", Adaptive: true,
		Dt: 0.1, Duration: 50.0, SnapshotDt: 10.0, Tolerance: 1e-8,
		Physics: PhysicsConfig{
			Nph: 10, Omega1: 0, Omega2: 30, Omega3: 150,
			G: 5, Kappa: 0.1, GammaH: 40, GammaC: 40,
			TH: 20, TC: 20, TEnv: 0,
		},
	},
	// Isolated cavity with one excitation decaying at 2*kappa.
	"cavity-decay": {
		Integrator: "rk4", Adaptive: false,
		Dt: 0.05, Duration: 20.0, SnapshotDt: 5.0, Tolerance: 1e-8,
		Physics: PhysicsConfig{
			Nph: 10, Omega1: 0, Omega2: 30, Omega3: 150,
			G: 0, Kappa: 0.25, GammaH: 0, GammaC: 0,
			TH: 0, TC: 0, TEnv: 0,
		},
	},
	// Weak coupling: slower gain, longer transient.
	"weak-coupling": {
		Integrator: "rk45", Adaptive: true,
		Dt: 0.1, Duration: 100.0, SnapshotDt: 20.0, Tolerance: 1e-8,
		Physics: PhysicsConfig{
			Nph: 10, Omega1: 0, Omega2: 30, Omega3: 150,
			G: 1, Kappa: 0.1, GammaH: 40, GammaC: 40,
			TH: 100, TC: 20, TEnv: 0,
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
