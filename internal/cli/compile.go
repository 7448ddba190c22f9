package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the JSON payload of compile.
type CompilationResult struct {
	Tables []string        `json:"tables"`
	Hashes []string        `json:"hashes"`
	Output string          `json:"output,omitempty"`
	IR     json.RawMessage `json:"ir,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <tables-dir>",
		Short: "Compile CUE tables to canonical IR",
		Long: `Compile the CUE tables of a directory to canonical JSON IR.

Tables are validated against the standard catalog first. The IR is the
same form the call log stores, so each table's hash matches the one
recorded for sessions that loaded it.

Examples:
  vector compile ./tables
  vector compile ./tables -o tables.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, tablesDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	loaded, loadErrs := LoadTables(tablesDir, LoadModeCollectAll)
	if loaded == nil {
		return loadFailure(f, loadErrs)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, tablesDir)

	validation, err := ValidateTables(loaded.Tables)
	if err != nil {
		return f.fail(ErrCodeGeneric, err.Error())
	}
	for _, e := range loadErrs {
		validation.Errors = append(validation.Errors, loadValidationError(e))
	}
	if len(validation.Errors) > 0 {
		validation.Valid = false
		return outputValidationErrors(f, validation)
	}

	data, err := compileIR(loaded.Tables)
	if err != nil {
		return f.fail(ErrCodeGeneric, err.Error())
	}

	result := CompilationResult{Tables: []string{}, Hashes: []string{}}
	for _, t := range loaded.Tables {
		f.VerboseLog("Compiled table: %s", t.Name)
		hash, err := ir.TableHash(t)
		if err != nil {
			return f.fail(ErrCodeGeneric, err.Error())
		}
		result.Tables = append(result.Tables, t.Name)
		result.Hashes = append(result.Hashes, hash)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return f.fail(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		result.Output = opts.Output
	}

	if f.IsJSON() {
		if opts.Output == "" {
			result.IR = json.RawMessage(bytes.TrimSpace(data))
		}
		return f.Success(result)
	}

	if opts.Output == "" {
		_, err := f.Writer.Write(data)
		return err
	}
	fmt.Fprintf(f.Writer, "✓ Compiled %d table(s)\n", len(result.Tables))
	for i, name := range result.Tables {
		fmt.Fprintf(f.Writer, "  %s  %s\n", name, result.Hashes[i])
	}
	fmt.Fprintf(f.Writer, "Wrote canonical IR to %s\n", opts.Output)
	return nil
}

// compileIR renders tables as indented canonical JSON with a trailing
// newline.
func compileIR(tables []ir.TableSpec) ([]byte, error) {
	arr := make(ir.IRArray, len(tables))
	for i, t := range tables {
		arr[i] = t.IR()
	}
	canonical, err := ir.MarshalCanonical(arr)
	if err != nil {
		return nil, fmt.Errorf("marshal IR: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, fmt.Errorf("indent IR: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
