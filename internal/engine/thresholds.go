package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds parameterizes the rule engine and the per-user
// needs-attention flags. Zero values are never used directly; load
// with DefaultThresholds or LoadThresholds.
type Thresholds struct {
	// Team-level triggers.
	StressTeamPercentage       float64 `yaml:"stress_team_percentage"`
	StressTeamCritical         float64 `yaml:"stress_team_critical"`
	NegativeEmotionsPercentage float64 `yaml:"negative_emotions_percentage"`
	LowEnergyPercentage        float64 `yaml:"low_energy_percentage"`
	EmotionalVolatility        float64 `yaml:"emotional_volatility"`

	// Individual-level triggers.
	IndividualStressHigh     float64 `yaml:"individual_stress_high"`
	IndividualStressCritical float64 `yaml:"individual_stress_critical"`
	IndividualNegativeHigh   float64 `yaml:"individual_negative_high"`
	IndividualLowEnergy      float64 `yaml:"individual_low_energy"`
	IndividualVolatility     float64 `yaml:"individual_volatility"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		StressTeamPercentage:       0.3,
		StressTeamCritical:         0.5,
		NegativeEmotionsPercentage: 0.4,
		LowEnergyPercentage:        0.6,
		EmotionalVolatility:        0.5,

		IndividualStressHigh:     0.65,
		IndividualStressCritical: 0.8,
		IndividualNegativeHigh:   0.6,
		IndividualLowEnergy:      0.7,
		IndividualVolatility:     0.4,
	}
}

// LoadThresholds reads a YAML thresholds file and overlays it onto the
// defaults, so a partial file only overrides the keys it names.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	raw, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &th); err != nil {
		return DefaultThresholds(), fmt.Errorf("parse thresholds file: %w", err)
	}
	return th, nil
}
