package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.05
	DefaultDuration = 60.0
	DefaultBeta     = 0.0005
	DefaultGamma    = 0.25
	DefaultDelta    = 0.02
	DefaultS        = 990.0
	DefaultI        = 10.0
	DefaultStages   = 3
)

type Config struct {
	Model      string          `yaml:"model"`
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	Tolerance  float64         `yaml:"tolerance"`
	Adaptive   bool            `yaml:"adaptive"`
	Seed       int64           `yaml:"seed"`
	InitState  InitStateConfig `yaml:"init_state"`
	Rates      RatesConfig     `yaml:"rates"`
}

type InitStateConfig struct {
	S float64 `yaml:"s"`
	I float64 `yaml:"i"`
	R float64 `yaml:"r"`
}

type RatesConfig struct {
	Beta   float64 `yaml:"beta"`
	Gamma  float64 `yaml:"gamma"`
	Delta  float64 `yaml:"delta"`
	Stages int     `yaml:"stages"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "sir",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		InitState: InitStateConfig{
			S: DefaultS,
			I: DefaultI,
		},
		Rates: RatesConfig{
			Beta:   DefaultBeta,
			Gamma:  DefaultGamma,
			Delta:  DefaultDelta,
			Stages: DefaultStages,
		},
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

// GetInitState lays out the initial compartments in the state order the
// configured model expects.
func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case "sir-directed":
		return []float64{c.InitState.S, c.InitState.I}
	case "stages":
		n := c.Rates.Stages
		if n < 1 {
			n = DefaultStages
		}
		state := make([]float64, n+2)
		state[0] = c.InitState.S
		state[1] = c.InitState.I
		state[n+1] = c.InitState.R
		return state
	default:
		return []float64{c.InitState.S, c.InitState.I, c.InitState.R}
	}
}

func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"beta":   c.Rates.Beta,
		"gamma":  c.Rates.Gamma,
		"delta":  c.Rates.Delta,
		"stages": float64(c.Rates.Stages),
	}
}
