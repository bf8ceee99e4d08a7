package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/spikeforge/internal/ir"
)

// Scenario defines a circuit conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Circuit is the inline circuit definition.
	Circuit *ir.CircuitSpec `yaml:"circuit,omitempty"`

	// Source is a CUE file holding circuit definitions, used when Circuit
	// is not set. Relative paths are resolved against the scenario file.
	Source string `yaml:"source,omitempty"`

	// CircuitName selects a circuit of Source. Optional when Source
	// defines exactly one circuit.
	CircuitName string `yaml:"circuit_name,omitempty"`

	// ExpectError is an error class or code the circuit must be rejected with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the recorded spikes.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates the recorded spikes of neurons matched by name.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Neuron is a substring matched against neuron names.
	Neuron string `yaml:"neuron"`

	// Count is the expected number of spikes (fire_count).
	Count int `yaml:"count,omitempty"`

	// Steps are the expected firing steps, ascending (fires_at).
	Steps []int `yaml:"steps,omitempty"`

	// Scale and Offset map a firing step to a value (affine_decode).
	Scale  float64 `yaml:"scale,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`

	// Expect is the expected decoded value (affine_decode, max_level).
	Expect *float64 `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertFires        = "fires"
	AssertSilent       = "silent"
	AssertFireCount    = "fire_count"
	AssertFiresAt      = "fires_at"
	AssertAffineDecode = "affine_decode"
	AssertMaxLevel     = "max_level"
)

// Error classes accepted by expect_error in addition to error codes.
const (
	ErrorClassConfiguration   = "configuration"
	ErrorClassWiring          = "wiring"
	ErrorClassIncompleteGraph = "incomplete_graph"
	ErrorClassSimulation      = "simulation"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so typos like "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Source != "" && !filepath.IsAbs(scenario.Source) {
		scenario.Source = filepath.Join(filepath.Dir(path), scenario.Source)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Circuit == nil && s.Source == "":
		return fmt.Errorf("circuit or source is required")
	case s.Circuit != nil && s.Source != "":
		return fmt.Errorf("circuit and source are mutually exclusive")
	case s.Circuit != nil && s.CircuitName != "":
		return fmt.Errorf("circuit_name requires source")
	}

	if s.Source != "" {
		if _, err := os.Stat(s.Source); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", s.Source)
		}
	}

	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if strings.TrimSpace(a.Neuron) == "" {
		return fmt.Errorf("assertions[%d]: neuron is required", index)
	}

	switch a.Type {
	case AssertFires, AssertSilent:
	case AssertFireCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for fire_count", index)
		}
	case AssertFiresAt:
		if a.Steps == nil {
			return fmt.Errorf("assertions[%d]: steps is required for fires_at", index)
		}
	case AssertAffineDecode:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for affine_decode", index)
		}
		if a.Scale == 0 {
			return fmt.Errorf("assertions[%d]: scale is required for affine_decode", index)
		}
	case AssertMaxLevel:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for max_level", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
