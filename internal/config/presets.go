package config

var Presets = map[string]map[string]*Config{
	"sir": {
		"outbreak": {
			Model: "sir", Integrator: "rk4", Dt: 0.05, Duration: 60.0,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25},
		},
		"slow": {
			Model: "sir", Integrator: "rk45", Dt: 0.05, Duration: 200.0,
			Adaptive: true, Tolerance: 1e-8,
			InitState: InitStateConfig{S: 999, I: 1},
			Rates:     RatesConfig{Beta: 0.0003, Gamma: 0.25},
		},
		"noisy": {
			Model: "sir", Integrator: "stochastic", Dt: 0.05, Duration: 60.0,
			Seed:      1,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25},
		},
	},
	"sir-vital": {
		"endemic": {
			Model: "sir-vital", Integrator: "rk4", Dt: 0.05, Duration: 400.0,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25, Delta: 0.02},
		},
	},
	"sir-directed": {
		"textbook": {
			Model: "sir-directed", Integrator: "rk4", Dt: 0.05, Duration: 60.0,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25},
		},
	},
	"stages": {
		// Progression at n*gamma keeps the mean infectious period
		// comparable to plain SIR.
		"three": {
			Model: "stages", Integrator: "rk4", Dt: 0.05, Duration: 80.0,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25, Delta: 0.75, Stages: 3},
		},
		"deep": {
			Model: "stages", Integrator: "rk45", Dt: 0.05, Duration: 120.0,
			Adaptive: true, Tolerance: 1e-8,
			InitState: InitStateConfig{S: 990, I: 10},
			Rates:     RatesConfig{Beta: 0.0005, Gamma: 0.25, Delta: 1.5, Stages: 6},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
