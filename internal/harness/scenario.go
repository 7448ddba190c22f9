package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of engine calls with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description,omitempty"`

	// Tables lists CUE table files to compile and load, relative to the
	// base path the scenario was loaded with.
	Tables []string `yaml:"tables,omitempty"`

	// Session is the session ID every call is recorded under.
	// Defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Steps are executed in order, one engine call each.
	Steps []Step `yaml:"steps"`

	// Laws are algebraic properties checked after the steps.
	Laws []Law `yaml:"laws,omitempty"`

	// Assertions run against the final trace and call log.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one call. Args holds argument batches: [[1, 2]] calls f(1, 2),
// [[1], [2]] calls f(1)(2).
type Step struct {
	Call   string  `yaml:"call"`
	Args   [][]any `yaml:"args"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step. A step expects either a
// result or an error code; Clause optionally pins the selected clause.
type Expect struct {
	Result    any
	HasResult bool
	Error     string
	Clause    *int
}

// UnmarshalYAML distinguishes "result: null" from an absent result.
func (e *Expect) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expect must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "result":
			if err := val.Decode(&e.Result); err != nil {
				return err
			}
			e.HasResult = true
		case "error":
			if err := val.Decode(&e.Error); err != nil {
				return err
			}
		case "clause":
			var n int
			if err := val.Decode(&n); err != nil {
				return err
			}
			e.Clause = &n
		default:
			return fmt.Errorf("line %d: field %s not found in type harness.Expect", key.Line, key.Value)
		}
	}
	return nil
}

// Law is a property checked by calling the engine directly.
type Law struct {
	// Type is one of grouping, stability or immutability.
	Type string `yaml:"type"`

	// Call is the qualified name under test.
	Call string `yaml:"call"`

	// Args is the full argument list.
	Args []any `yaml:"args"`

	// Alt replaces the trailing len(Alt) arguments (immutability only).
	Alt []any `yaml:"alt,omitempty"`
}

// Law type constants.
const (
	LawGrouping     = "grouping"
	LawStability    = "stability"
	LawImmutability = "immutability"
)

// Assertion validates the trace or the call log.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count or
	// final_state.
	Type string `yaml:"type"`

	// Call is the called name (trace_contains, trace_count).
	Call string `yaml:"call,omitempty"`

	// Args are the expected argument batches (trace_contains, optional).
	Args [][]any `yaml:"args,omitempty"`

	// Count is the expected number of calls (trace_count).
	Count int `yaml:"count,omitempty"`

	// Calls is the expected call order (trace_order).
	Calls []string `yaml:"calls,omitempty"`

	// Table is the store table to query (final_state).
	Table string `yaml:"table,omitempty"`

	// Where filters the queried rows (final_state). Must select one row.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds expected column values (final_state, subset match).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// TableFileNotFoundError is returned when a scenario references a table
// file that doesn't exist.
type TableFileNotFoundError struct {
	Scenario string
	Path     string
	Resolved string
}

// Error implements the error interface.
func (e *TableFileNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q references table file %q which does not exist (resolved to: %s)",
		e.Scenario, e.Path, e.Resolved)
}

// LoadScenario reads and parses a scenario YAML file. Table paths are
// resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving table paths relative to basePath.
//
// Unknown fields are rejected, so a typo like "assertion:" fails loudly.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	for i, p := range scenario.Tables {
		resolved := p
		if !filepath.IsAbs(p) && basePath != "" {
			resolved = filepath.Join(basePath, p)
		}
		if _, err := os.Stat(resolved); os.IsNotExist(err) {
			return nil, &TableFileNotFoundError{Scenario: scenario.Name, Path: p, Resolved: resolved}
		}
		scenario.Tables[i] = resolved
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 && len(s.Laws) == 0 {
		return fmt.Errorf("steps or laws are required")
	}

	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if e := step.Expect; e != nil {
			if e.HasResult && e.Error != "" {
				return fmt.Errorf("steps[%d].expect: result and error are mutually exclusive", i)
			}
			if !e.HasResult && e.Error == "" && e.Clause == nil {
				return fmt.Errorf("steps[%d].expect: one of result, error or clause is required", i)
			}
		}
	}

	for i, law := range s.Laws {
		if err := validateLaw(i, law); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateLaw(index int, l Law) error {
	if l.Call == "" {
		return fmt.Errorf("laws[%d]: call is required", index)
	}
	switch l.Type {
	case LawGrouping:
		if len(l.Args) < 2 {
			return fmt.Errorf("laws[%d]: grouping needs at least two args", index)
		}
	case LawStability:
	case LawImmutability:
		if len(l.Alt) == 0 || len(l.Alt) >= len(l.Args) {
			return fmt.Errorf("laws[%d]: immutability needs 0 < len(alt) < len(args)", index)
		}
	case "":
		return fmt.Errorf("laws[%d]: type is required", index)
	default:
		return fmt.Errorf("laws[%d]: unknown law type %q", index, l.Type)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
