package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/compiler"
)

func TestLoadTables_Testdata(t *testing.T) {
	result, errs := LoadTables(tablesDir, LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Tables, 2)
	assert.Equal(t, "classify", result.Tables[0].Name)
	assert.Equal(t, "describe a value", result.Tables[0].Doc)
	assert.Len(t, result.Tables[0].Clauses, 3)
	assert.Equal(t, "unwrap", result.Tables[1].Name)
}

func TestLoadTables_DirectoryErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing", func(t *testing.T) string { return "/nonexistent/tables" }, ErrCodeNotFound},
		{"empty", func(t *testing.T) string { return t.TempDir() }, ErrCodeNoFiles},
		{"file", func(t *testing.T) string {
			return writeFile(t, t.TempDir(), "x.cue", "table: {}")
		}, ErrCodeNotFound},
		{"no tables", func(t *testing.T) string {
			dir := t.TempDir()
			writeFile(t, dir, "x.cue", "other: 1")
			return dir
		}, ErrCodeNoTables},
		{"syntax", func(t *testing.T) string {
			dir := t.TempDir()
			writeFile(t, dir, "x.cue", "table: {")
			return dir
		}, ErrCodeLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := LoadTables(tt.dir(t), LoadModeCollectAll)
			require.NotEmpty(t, errs)

			var loadErr *LoadError
			require.True(t, errors.As(errs[0], &loadErr), "got %v", errs[0])
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadTables_CollectAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tables.cue", `
table: first: {doc: "no clauses"}
table: ok: {clauses: [{patterns: ["_"], handler: "lambda.id"}]}
table: second: {clauses: [{patterns: ["_"]}]}
`)

	result, errs := LoadTables(dir, LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, errs, 2)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "ok", result.Tables[0].Name)

	var first, second *LoadError
	require.True(t, errors.As(errs[0], &first))
	require.True(t, errors.As(errs[1], &second))
	assert.Equal(t, compiler.ErrTableNoClauses, first.Code)
	assert.Equal(t, compiler.ErrHandlerMissing, second.Code)

	_, errs = LoadTables(dir, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestFindCUEFiles_TopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.cue", "")
	writeFile(t, dir, "a.cue", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[0], "a.cue")
	assert.Contains(t, files[1], "b.cue")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"cue", ErrCodeBuildFailed},
		{"table.t.clauses", compiler.ErrTableNoClauses},
		{"table.t.clauses[0].patterns", compiler.ErrMalformedPattern},
		{"table.t.clauses[0].patterns[1].just", compiler.ErrMalformedPattern},
		{"table.t.clauses[0].patterns[1].pred", compiler.ErrInvalidPredicate},
		{"table.t.clauses[0].patterns[0].type", compiler.ErrUnknownTypeTag},
		{"table.t.clauses[0].handler", compiler.ErrHandlerMissing},
		{"table.t.clauses[0].handler.args", compiler.ErrHandlerMissing},
		{"", ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
	assert.Zero(t, err.Line())
}
