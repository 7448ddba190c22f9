package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/lib"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Tables   int                        `json:"tables"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Cycles   []compiler.CycleWarning    `json:"cycles,omitempty"`
	Shadowed []compiler.ShadowWarning   `json:"shadowed,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <tables-dir>",
		Short: "Validate tables without binding them",
		Long: `Compile and validate every table in a directory.

Checks the schema of each table, that table names are unique, and that
every handler and predicate names a catalog entry or another table.
Recursion between tables and clauses that can never be reached are
reported as warnings; they do not fail validation.

Exit codes:
  0 - All tables valid
  1 - One or more tables are invalid
  2 - Command error (directory not found, CUE syntax error)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, tablesDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	loaded, loadErrs := LoadTables(tablesDir, LoadModeCollectAll)
	if loaded == nil {
		return loadFailure(f, loadErrs)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, tablesDir)

	result, err := ValidateTables(loaded.Tables)
	if err != nil {
		return f.fail(ErrCodeGeneric, err.Error())
	}
	for _, e := range loadErrs {
		result.Errors = append(result.Errors, loadValidationError(e))
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(f, result)
	}
	return outputValidateSuccess(f, result)
}

// ValidateTables checks tables against the standard catalog and runs the
// recursion and reachability analyses.
func ValidateTables(tables []ir.TableSpec) (*ValidationResult, error) {
	cat, err := lib.Catalog()
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	errs := compiler.ValidateSet(tables, cat.Has)
	return &ValidationResult{
		Valid:    len(errs) == 0,
		Tables:   len(tables),
		Errors:   errs,
		Cycles:   compiler.AnalyzeCycles(tables),
		Shadowed: compiler.AnalyzeShadowing(tables),
	}, nil
}

func loadValidationError(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		field := loadErr.Field
		if field == "" {
			field = "load"
		}
		return compiler.ValidationError{
			Field:   field,
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    loadErr.Line(),
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}

func outputWarnings(f *OutputFormatter, result *ValidationResult) {
	for _, c := range result.Cycles {
		f.Printf("  %s: %s\n", c.Level, c.Message)
	}
	for _, s := range result.Shadowed {
		f.Printf("  %s: %s\n", s.Level, s.Message)
	}
}

func outputValidateSuccess(f *OutputFormatter, result *ValidationResult) error {
	if f.IsJSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ %d table(s) valid\n", result.Tables)
	outputWarnings(f, result)
	return nil
}

func outputValidationErrors(f *OutputFormatter, result *ValidationResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if f.IsJSON() {
		if err := f.Failure(result.Errors[0].Code, result.Errors[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	outputWarnings(f, result)
	return exitErr
}
