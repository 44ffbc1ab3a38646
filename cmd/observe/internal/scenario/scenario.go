// Package scenario loads and executes yaml-described notification scenarios
// against an observable property. It backs the "observe run" command and
// doubles as an executable form of the library's documentation.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario represents a scenario yaml file.
type Scenario struct {
	Property PropertyConfig `yaml:"property"`
	Steps    []Step         `yaml:"steps"`
}

// PropertyConfig mirrors the property construction options.
type PropertyConfig struct {
	AlwaysNotify    bool `yaml:"always_notify,omitempty"`
	IncludePrevious bool `yaml:"include_previous,omitempty"`
}

// Step is a single scenario action. Exactly one field must be set.
type Step struct {
	// Set assigns a value to the property.
	Set *string `yaml:"set,omitempty"`
	// Register subscribes a named printer to the property.
	Register string `yaml:"register,omitempty"`
	// Unregister removes a previously registered printer by name.
	// Unknown names are a silent no-op, like unregistering an unknown
	// callback on the property itself.
	Unregister string `yaml:"unregister,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates scenario yaml.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	for i, step := range s.Steps {
		actions := 0
		if step.Set != nil {
			actions++
		}
		if step.Register != "" {
			actions++
		}
		if step.Unregister != "" {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("step %d: want exactly one of set, register, unregister", i+1)
		}
	}
	return nil
}
