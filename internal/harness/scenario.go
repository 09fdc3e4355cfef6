package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/minrx/internal/pattern"
)

// Scenario defines a match scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pattern is the pattern under test in structural document form.
	Pattern pattern.Document `yaml:"pattern"`

	// Normalize applies NFC to the pattern and every subject before matching.
	Normalize bool `yaml:"normalize,omitempty"`

	// Cases lists subjects with their expected verdicts.
	Cases []MatchCase `yaml:"cases"`

	// Assertions validate properties of the compiled program and the runs.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// MatchCase is one subject and its expected verdict.
type MatchCase struct {
	Subject string `yaml:"subject"`

	// Expect is required; a pointer distinguishes false from missing.
	Expect *bool `yaml:"expect"`
}

// Assertion validates a property of a scenario run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "program_length": the program has exactly Count instructions
	// - "instruction_count": the program has exactly Count instructions with opcode Op
	// - "max_steps": no case executed more than Count instructions
	Type string `yaml:"type"`

	// Op is the opcode mnemonic (used by instruction_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number (all assertion types).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertProgramLength    = "program_length"
	AssertInstructionCount = "instruction_count"
	AssertMaxSteps         = "max_steps"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. The first invalid file aborts loading.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, glob := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, glob))
		if err != nil {
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
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

	if s.Pattern.Node == nil {
		return fmt.Errorf("pattern is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Expect == nil {
			return fmt.Errorf("cases[%d]: expect is required", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertProgramLength, AssertMaxSteps:
		case AssertInstructionCount:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: op is required for %s", i, a.Type)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}

	return nil
}
