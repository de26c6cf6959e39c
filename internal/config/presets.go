package config

import (
	"fmt"
	"sort"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// Preset is a named, ready-to-run parameter profile.
type Preset struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Parameters  domain.SimulationParameters `json:"parameters"`
}

// presets are compiled in; there is no preset persistence layer.
var presets = map[string]Preset{
	"conservative": {
		Name:        "Conservative portfolio",
		Description: "Low risk, stable returns (bonds plus a small equity share)",
		Parameters: withDefaults(func(p *domain.SimulationParameters) {
			p.RateMin = -2.0
			p.RateMean = 4.5
			p.RateMax = 8.0
			p.VolatilityMin = 5.0
			p.VolatilityMean = 7.0
			p.VolatilityMax = 12.0
			p.TargetWithdrawalRate = 3.5
		}),
	},
	"moderate": {
		Name:        "Balanced portfolio",
		Description: "Moderate risk, balanced returns (60/40 equities/bonds)",
		Parameters: withDefaults(func(p *domain.SimulationParameters) {
			p.RateMin = -8.0
			p.RateMean = 7.5
			p.RateMax = 20.0
			p.VolatilityMin = 10.0
			p.VolatilityMean = 15.0
			p.VolatilityMax = 20.0
			p.TargetWithdrawalRate = 4.0
		}),
	},
	"aggressive": {
		Name:        "Aggressive portfolio",
		Description: "High risk, high return potential (80%+ equities)",
		Parameters: withDefaults(func(p *domain.SimulationParameters) {
			p.RateMin = -25.0
			p.RateMean = 9.5
			p.RateMax = 35.0
			p.VolatilityMin = 18.0
			p.VolatilityMean = 25.0
			p.VolatilityMax = 35.0
			p.TargetWithdrawalRate = 4.5
		}),
	},
	"retirement_focused": {
		Name:        "Retirement strategy",
		Description: "Long-horizon retirement planning with inflation indexing",
		Parameters: withDefaults(func(p *domain.SimulationParameters) {
			p.Mode = domain.ModeMixed
			p.InitialAmount = 25000
			p.MonthlyDeposit = 800
			p.RateMin = -10.0
			p.RateMean = 6.5
			p.RateMax = 18.0
			p.VolatilityMin = 8.0
			p.VolatilityMean = 12.0
			p.VolatilityMax = 18.0
			p.AccumulationMonths = 300
			p.WithdrawalMonths = 360
			p.TargetWithdrawalRate = 3.8
		}),
	},
}

func withDefaults(customize func(*domain.SimulationParameters)) domain.SimulationParameters {
	p := domain.DefaultParameters()
	customize(&p)
	return p
}

// GetPreset returns the named preset.
func GetPreset(key string) (Preset, error) {
	preset, ok := presets[key]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", key)
	}
	return preset, nil
}

// Presets returns all presets keyed by identifier.
func Presets() map[string]Preset {
	out := make(map[string]Preset, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// PresetKeys returns the available preset identifiers, sorted.
func PresetKeys() []string {
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
