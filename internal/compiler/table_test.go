package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/ir"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("tables.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompileTables_AllPatternForms(t *testing.T) {
	v := compileString(t, `
table: classify: {
	doc: "describe a value"
	clauses: [
		{patterns: [0], handler: {fn: "lambda.k", args: ["zero"]}},
		{patterns: [{type: "int"}], handler: {fn: "lambda.k", args: ["int"]}},
		{patterns: [{just: {type: "string"}}], handler: "lambda.id"},
		{patterns: [{pred: "logic.not"}], handler: "lambda.id"},
		{patterns: [{literal: {pred: "x"}}], handler: "lambda.id"},
		{patterns: [{a: 1}, [1, 2.5]], handler: "lambda.id"},
		{patterns: ["_", _], handler: "lambda.id"},
	]
}
`)

	tables, err := CompileTables(v)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, "classify", tbl.Name)
	assert.Equal(t, "describe a value", tbl.Doc)
	require.Len(t, tbl.Clauses, 7)

	c := tbl.Clauses
	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternLiteral, Value: ir.IRInt(0)}, c[0].Patterns[0])
	assert.Equal(t, ir.HandlerSpec{Fn: "lambda.k", Args: ir.IRArray{ir.IRString("zero")}}, c[0].Handler)

	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternType, Tag: "int"}, c[1].Patterns[0])

	require.Equal(t, ir.PatternJust, c[2].Patterns[0].Kind)
	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternType, Tag: "string"}, *c[2].Patterns[0].Inner)
	assert.Equal(t, ir.HandlerSpec{Fn: "lambda.id"}, c[2].Handler)

	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternPredicate, Pred: "logic.not"}, c[3].Patterns[0])

	// {literal: ...} escapes a struct that looks like a pattern form.
	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternLiteral, Value: ir.IRObject{"pred": ir.IRString("x")}}, c[4].Patterns[0])

	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternLiteral, Value: ir.IRObject{"a": ir.IRInt(1)}}, c[5].Patterns[0])
	assert.Equal(t, ir.PatternSpec{Kind: ir.PatternLiteral, Value: ir.IRArray{ir.IRInt(1), ir.IRFloat(2.5)}}, c[5].Patterns[1])

	assert.Equal(t, ir.PatternWildcard, c[6].Patterns[0].Kind)
	assert.Equal(t, ir.PatternWildcard, c[6].Patterns[1].Kind)
}

func TestCompileTables_DeclarationOrder(t *testing.T) {
	v := compileString(t, `
table: zeta: clauses: [{patterns: [], handler: "lambda.id"}]
table: alpha: clauses: [{patterns: [], handler: "lambda.id"}]
`)

	tables, err := CompileTables(v)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "zeta", tables[0].Name)
	assert.Equal(t, "alpha", tables[1].Name)
	assert.Equal(t, []ir.PatternSpec{}, tables[0].Clauses[0].Patterns)
}

func TestCompileTables_NoTables(t *testing.T) {
	v := compileString(t, `other: 1`)
	tables, err := CompileTables(v)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestCompileTable_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "missing clauses",
			src:   `table: t: doc: "x"`,
			field: "table.t.clauses",
		},
		{
			name:  "missing patterns",
			src:   `table: t: clauses: [{handler: "lambda.id"}]`,
			field: "table.t.clauses[0].patterns",
		},
		{
			name:  "missing handler",
			src:   `table: t: clauses: [{patterns: [1]}]`,
			field: "table.t.clauses[0].handler",
		},
		{
			name:  "handler without fn",
			src:   `table: t: clauses: [{patterns: [1], handler: {args: [1]}}]`,
			field: "table.t.clauses[0].handler",
		},
		{
			name:  "mixed pattern form",
			src:   `table: t: clauses: [{patterns: [{type: "int", extra: 1}], handler: "lambda.id"}]`,
			field: "table.t.clauses[0].patterns[0]",
		},
		{
			name:  "non-string type tag",
			src:   `table: t: clauses: [{patterns: [{type: 3}], handler: "lambda.id"}]`,
			field: "table.t.clauses[0].patterns[0].type",
		},
		{
			name:  "incomplete literal",
			src:   `table: t: clauses: [{patterns: [int], handler: "lambda.id"}]`,
			field: "table.t.clauses[0].patterns[0]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := compileString(t, tc.src)
			_, err := CompileTables(v)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Message: "boom"}
	assert.Equal(t, "value: boom", err.Error())

	err = &CompileError{Field: "table.t", Message: "boom"}
	assert.Equal(t, "table.t: boom", err.Error())
}

func TestToIR(t *testing.T) {
	v := compileString(t, `x: {n: null, b: true, i: 3, f: 1.5, s: "hi", l: [1, "a"], o: {k: "v"}}`)

	got, err := ToIR(v.LookupPath(cue.ParsePath("x")))
	require.NoError(t, err)

	want := ir.IRObject{
		"n": ir.IRNull{},
		"b": ir.IRBool(true),
		"i": ir.IRInt(3),
		"f": ir.IRFloat(1.5),
		"s": ir.IRString("hi"),
		"l": ir.IRArray{ir.IRInt(1), ir.IRString("a")},
		"o": ir.IRObject{"k": ir.IRString("v")},
	}
	assert.Equal(t, want, got)
}

func TestToIR_NotConcrete(t *testing.T) {
	v := compileString(t, `x: string`)
	_, err := ToIR(v.LookupPath(cue.ParsePath("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concrete")
}
