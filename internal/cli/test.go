package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/harness"
)

// ErrCodeTestFailed is the JSON error code of a failing suite.
const ErrCodeTestFailed = "E_TEST_FAILED"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	NoGolden bool   // skip golden comparison
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <tables-dir> <scenarios-dir>",
		Short: "Run scenario files",
		Long: `Run YAML scenarios against the standard catalog.

Each scenario loads its tables from the tables directory, executes its
steps, checks its laws and assertions, and compares its trace with the
golden file in <scenarios-dir>/golden when one exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  vector test ./tables ./scenarios
  vector test ./tables ./scenarios --filter "classify*"
  vector test ./tables ./scenarios --update
  vector test ./tables ./scenarios --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.NoGolden, "no-golden", false, "skip golden file comparison")

	return cmd
}

func runTests(opts *TestOptions, tablesDir, scenariosDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(tablesDir); os.IsNotExist(err) {
		return f.fail(ErrCodeNotFound, fmt.Sprintf("tables directory not found: %s", tablesDir))
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return f.fail(ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := harness.DiscoverScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return f.fail(ErrCodeScanError, err.Error())
	}
	if len(files) == 0 {
		return f.fail(ErrCodeNoFiles, fmt.Sprintf("no scenario files found in %s", scenariosDir))
	}
	f.VerboseLog("Found %d scenario(s)", len(files))

	mode := harness.GoldenCompare
	switch {
	case opts.Update:
		mode = harness.GoldenUpdate
	case opts.NoGolden:
		mode = harness.GoldenOff
	}

	suite := harness.RunSuite(files, tablesDir, mode,
		harness.WithLogger(opts.Logger(cmd.ErrOrStderr())))

	if f.IsJSON() {
		return outputTestJSON(f, suite)
	}
	return outputTestText(f, suite)
}

func outputTestText(f *OutputFormatter, suite *harness.SuiteResult) error {
	for _, s := range suite.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		line := fmt.Sprintf("%s %s", mark, s.Name)
		if s.Golden != "" {
			line += fmt.Sprintf(" (golden %s)", s.Golden)
		}
		fmt.Fprintln(f.Writer, line)
		for _, e := range s.Errors {
			fmt.Fprintf(f.Writer, "    %s\n", e)
		}
	}

	fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.Total)
	if suite.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", suite.Failed))
	}
	return nil
}

func outputTestJSON(f *OutputFormatter, suite *harness.SuiteResult) error {
	if suite.Failed == 0 {
		return f.Success(suite)
	}
	msg := fmt.Sprintf("%d scenario(s) failed", suite.Failed)
	if err := f.Failure(ErrCodeTestFailed, msg, suite); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
