package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/masersim/internal/maser"
)

const (
	DefaultDt         = 0.1
	DefaultDuration   = 50.0
	DefaultSnapshotDt = 10.0
	DefaultTolerance  = 1e-8
)

type Config struct {
	Integrator string        `yaml:"integrator"`
	Adaptive   bool          `yaml:"adaptive"`
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	SnapshotDt float64       `yaml:"snapshot_dt"`
	Tolerance  float64       `yaml:"tolerance"`
	Physics    PhysicsConfig `yaml:"physics"`
}

type PhysicsConfig struct {
	Nph    int     `yaml:"nph"`
	Omega1 float64 `yaml:"omega1"`
	Omega2 float64 `yaml:"omega2"`
	Omega3 float64 `yaml:"omega3"`
	G      float64 `yaml:"g"`
	Kappa  float64 `yaml:"kappa"`
	GammaH float64 `yaml:"gamma_h"`
	GammaC float64 `yaml:"gamma_c"`
	TH     float64 `yaml:"t_hot"`
	TC     float64 `yaml:"t_cold"`
	TEnv   float64 `yaml:"t_env"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk45",
		Adaptive:   true,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		SnapshotDt: DefaultSnapshotDt,
		Tolerance:  DefaultTolerance,
		Physics:    FromParams(maser.Reference()),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the physics section to the solver's parameter set.
func (c *Config) Params() maser.Params {
	p := c.Physics
	return maser.Params{
		Nph:    p.Nph,
		Omega1: p.Omega1,
		Omega2: p.Omega2,
		Omega3: p.Omega3,
		G:      p.G,
		Kappa:  p.Kappa,
		GammaH: p.GammaH,
		GammaC: p.GammaC,
		TH:     p.TH,
		TC:     p.TC,
		TEnv:   p.TEnv,
	}
}

func FromParams(p maser.Params) PhysicsConfig {
	return PhysicsConfig{
		Nph:    p.Nph,
		Omega1: p.Omega1,
		Omega2: p.Omega2,
		Omega3: p.Omega3,
		G:      p.G,
		Kappa:  p.Kappa,
		GammaH: p.GammaH,
		GammaC: p.GammaC,
		TH:     p.TH,
		TC:     p.TC,
		TEnv:   p.TEnv,
	}
}
