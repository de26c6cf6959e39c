package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// InputParser handles parsing of simulation parameter files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads simulation parameters from a YAML file. Absent fields
// keep their documented defaults; the result is validated eagerly so that
// no trial ever runs on an inconsistent parameter set.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse unmarshals YAML parameter data over the defaults and validates it.
func (ip *InputParser) Parse(data []byte) (*domain.SimulationParameters, error) {
	params := domain.DefaultParameters()
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	return &params, nil
}

// CreateExampleConfiguration returns a complete parameter set suitable for
// writing out as a starting-point config file.
func (ip *InputParser) CreateExampleConfiguration() *domain.SimulationParameters {
	params := domain.DefaultParameters()
	params.Mode = domain.ModeMixed
	params.Seed = 42
	return &params
}

// WriteExampleFile writes the example configuration as YAML.
func (ip *InputParser) WriteExampleFile(filename string) error {
	params := ip.CreateExampleConfiguration()
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal example configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
