package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/ir"
)

// LoadMode controls how errors are handled during table loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll compiles every table and collects all errors.
	LoadModeCollectAll
)

// LoadResult holds the tables compiled from a directory.
type LoadResult struct {
	Tables    []ir.TableSpec
	CUEValue  cue.Value
	Files     []string
	FileCount int
}

// LoadError is a loading or compile error with an optional CUE position.
type LoadError struct {
	Code    string
	Message string
	Field   string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// Error code constants shared by every command.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoTables    = "E008" // No tables declared
	ErrCodeBadArgs     = "E009" // Malformed command arguments
	ErrCodeStore       = "E010" // Database error
)

// LoadTables compiles every table declared by the .cue files directly
// inside dir. The files are loaded together as one CUE instance, so they
// may refer to each other's definitions.
//
// A nil result means nothing could be compiled; errs then holds the
// reason. With LoadModeCollectAll a non-nil result may come with one
// error per table that failed to compile.
func LoadTables(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("tables directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing tables directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = "./" + filepath.Base(f)
	}
	instances := load.Instances(names, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{convertCompileError(err, ErrCodeBuildFailed)}
	}

	result := &LoadResult{
		Tables:    []ir.TableSpec{},
		CUEValue:  value,
		Files:     files,
		FileCount: len(files),
	}

	tablesVal := value.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoTables, Message: fmt.Sprintf("no tables declared in %s", dir)}}
	}
	iter, err := tablesVal.Fields()
	if err != nil {
		return result, []error{convertCompileError(err, ErrCodeBuildFailed)}
	}

	var errs []error
	for iter.Next() {
		spec, err := compiler.CompileTable(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, ErrCodeGeneric))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Tables = append(result.Tables, *spec)
	}
	return result, errs
}

// FindCUEFiles returns the .cue files directly inside dir, sorted.
// Subdirectories are not searched.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info. fallback is used when the error carries no field.
func convertCompileError(err error, fallback string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := MapFieldToErrorCode(compileErr.Field)
		if code == ErrCodeGeneric {
			code = fallback
		}
		return &LoadError{
			Code:    code,
			Message: compileErr.Message,
			Field:   compileErr.Field,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}

// MapFieldToErrorCode maps a compiler error field to a validation code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case strings.HasSuffix(field, ".clauses"):
		return compiler.ErrTableNoClauses
	case strings.HasSuffix(field, ".pred"):
		return compiler.ErrInvalidPredicate
	case strings.HasSuffix(field, ".type"):
		return compiler.ErrUnknownTypeTag
	case strings.Contains(field, ".patterns"):
		return compiler.ErrMalformedPattern
	case strings.Contains(field, ".handler"):
		return compiler.ErrHandlerMissing
	default:
		return ErrCodeGeneric
	}
}

// loadFailure turns the first loader error into a command error.
func loadFailure(f *OutputFormatter, errs []error) error {
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) {
		return f.fail(loadErr.Code, loadErr.Message)
	}
	return f.fail(ErrCodeGeneric, errs[0].Error())
}
