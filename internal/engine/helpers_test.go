package engine

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/lib"
	"github.com/roach88/vector/internal/store"
	"github.com/roach88/vector/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	cat, err := lib.Catalog()
	require.NoError(t, err)

	base := []EngineOption{
		WithLogger(discard),
		WithClock(testutil.NewDeterministicClock()),
		WithSessionGenerator(testutil.NewFixedSessionGenerator("test-session")),
	}
	return New(cat, append(base, opts...)...)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "vector.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func batch(vals ...ir.IRValue) ir.IRArray {
	return ir.IRArray(vals)
}

var (
	wildcard = ir.PatternSpec{Kind: ir.PatternWildcard}
	intType  = ir.PatternSpec{Kind: ir.PatternType, Tag: "int"}
)

func lit(v ir.IRValue) ir.PatternSpec {
	return ir.PatternSpec{Kind: ir.PatternLiteral, Value: v}
}

func handler(fn string, args ...ir.IRValue) ir.HandlerSpec {
	h := ir.HandlerSpec{Fn: fn}
	if len(args) > 0 {
		h.Args = ir.IRArray(args)
	}
	return h
}

func clause(h ir.HandlerSpec, patterns ...ir.PatternSpec) ir.ClauseSpec {
	if patterns == nil {
		patterns = []ir.PatternSpec{}
	}
	return ir.ClauseSpec{Patterns: patterns, Handler: h}
}

// classifyTable describes a single argument.
func classifyTable() ir.TableSpec {
	return ir.TableSpec{
		Name: "classify",
		Clauses: []ir.ClauseSpec{
			clause(handler("lambda.k", ir.IRString("zero")), lit(ir.IRInt(0))),
			clause(handler("lambda.k", ir.IRString("int")), intType),
			clause(handler("lambda.id"), wildcard),
		},
	}
}

func compileCUE(t *testing.T, src string) []ir.TableSpec {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	specs, err := compiler.CompileTables(v)
	require.NoError(t, err)
	return specs
}
