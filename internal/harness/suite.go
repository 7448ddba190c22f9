package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GoldenMode selects how RunSuite treats golden files.
type GoldenMode int

const (
	// GoldenCompare compares against golden files that exist and skips
	// scenarios without one.
	GoldenCompare GoldenMode = iota
	// GoldenUpdate rewrites every golden file.
	GoldenUpdate
	// GoldenOff ignores golden files.
	GoldenOff
)

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "" when not checked
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a suite run.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// DiscoverScenarios returns every .yaml/.yml file under dir, sorted.
// A non-empty filter is a glob matched against the file name without its
// extension.
func DiscoverScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<base>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// RunSuite loads and runs each scenario file. Table paths in scenarios
// are resolved against tablesDir.
func RunSuite(files []string, tablesDir string, mode GoldenMode, opts ...RunOption) *SuiteResult {
	suite := &SuiteResult{
		Scenarios: make([]ScenarioOutcome, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		outcome := runFile(file, tablesDir, mode, opts)
		if outcome.Pass {
			suite.Passed++
		} else {
			suite.Failed++
		}
		suite.Scenarios = append(suite.Scenarios, outcome)
	}
	return suite
}

func runFile(file, tablesDir string, mode GoldenMode, opts []RunOption) ScenarioOutcome {
	outcome := ScenarioOutcome{Name: filepath.Base(file), Path: file}
	fail := func(format string, args ...any) ScenarioOutcome {
		outcome.Pass = false
		outcome.Errors = append(outcome.Errors, fmt.Sprintf(format, args...))
		return outcome
	}

	scenario, err := LoadScenarioWithBasePath(file, tablesDir)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	outcome.Name = scenario.Name

	result, err := Run(scenario, opts...)
	if err != nil {
		return fail("execution failed: %v", err)
	}
	outcome.Pass = result.Pass
	outcome.Errors = append(outcome.Errors, result.Errors...)

	if mode == GoldenOff {
		return outcome
	}

	data, err := Snapshot(scenario, result)
	if err != nil {
		return fail("failed to marshal trace: %v", err)
	}
	path := GoldenPath(file)

	if mode == GoldenUpdate {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fail("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fail("failed to write golden file: %v", err)
		}
		outcome.Golden = "updated"
		return outcome
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return outcome
	}
	if err != nil {
		return fail("failed to read golden file: %v", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), data) {
		return fail("trace does not match golden file %s (run with --update to regenerate)", path)
	}
	outcome.Golden = "match"
	return outcome
}
