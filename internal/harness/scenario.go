package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/statuslog/internal/ir"
)

// Scenario defines a test scenario loaded from YAML.
type Scenario struct {
	// Name is the unique scenario identifier, also the golden file name.
	Name string `yaml:"name"`

	// Description explains what the scenario tests.
	Description string `yaml:"description"`

	// Today is the fixed clock date, YYYY-MM-DD.
	Today string `yaml:"today"`

	// MaxAttempts overrides the coordinator's retry bound.
	MaxAttempts int `yaml:"max_attempts,omitempty"`

	// LookbackDays overrides the carry-forward window.
	LookbackDays int `yaml:"lookback_days,omitempty"`

	// Setup seeds blobs by path before any step runs.
	Setup map[string]string `yaml:"setup,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one action.
type Step struct {
	// Action is an API action name or one of the harness actions.
	Action string `yaml:"action"`

	// Args are decoded into the action's argument struct.
	Args yaml.Node `yaml:"args,omitempty"`

	// Expect checks the step's outcome. Without it the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is "", "validation" or "conflict".
	Error string `yaml:"error,omitempty"`

	// Changed, when set, must match whether the step wrote anything.
	Changed *bool `yaml:"changed,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record": the entry at Key equals Expect
	// - "absent": there is no entry at Key
	// - "status": the resolved record for Subject on Date equals Expect
	// - "entries": the log holds exactly Count entries
	// - "roster": the roster lists exactly Subjects, in order
	Type string `yaml:"type"`

	Key      string     `yaml:"key,omitempty"`
	Subject  string     `yaml:"subject,omitempty"`
	Date     string     `yaml:"date,omitempty"`
	Expect   *ir.Record `yaml:"expect,omitempty"`
	Count    *int       `yaml:"count,omitempty"`
	Subjects []string   `yaml:"subjects,omitempty"`
}

// Assertion type constants.
const (
	AssertRecord  = "record"
	AssertAbsent  = "absent"
	AssertStatus  = "status"
	AssertEntries = "entries"
	AssertRoster  = "roster"
)

// Expected step error kinds.
const (
	ErrorValidation = "validation"
	ErrorConflict   = "conflict"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
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

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := ir.ParseDate(s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if _, ok := actions[step.Action]; !ok {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Expect != nil {
			switch step.Expect.Error {
			case "", ErrorValidation, ErrorConflict:
			default:
				return fmt.Errorf("steps[%d].expect: unknown error kind %q", i, step.Expect.Error)
			}
		}
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
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRecord:
		if a.Key == "" || a.Expect == nil {
			return fmt.Errorf("assertions[%d]: key and expect are required for record", index)
		}
	case AssertAbsent:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for absent", index)
		}
	case AssertStatus:
		if a.Subject == "" || a.Expect == nil {
			return fmt.Errorf("assertions[%d]: subject and expect are required for status", index)
		}
		if a.Date != "" {
			if _, err := ir.ParseDate(a.Date); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertEntries:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for entries", index)
		}
	case AssertRoster:
		if a.Subjects == nil {
			return fmt.Errorf("assertions[%d]: subjects is required for roster (use [] for none)", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
