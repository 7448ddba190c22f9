package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/engine"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/lib"
	"github.com/roach88/vector/internal/registry"
	"github.com/roach88/vector/internal/store"
	"github.com/roach88/vector/internal/testutil"
)

// Harness runs one scenario against a real engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	catalog *registry.Catalog
	logger  *slog.Logger
}

// WithCatalog runs the scenario against cat instead of the standard
// library catalog.
func WithCatalog(cat *registry.Catalog) RunOption {
	return func(c *runConfig) {
		c.catalog = cat
	}
}

// WithLogger routes engine and harness logs to l. Default: discarded.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a deterministic
// clock and a fixed session ID, so the trace is reproducible byte for
// byte. An error is returned only when the scenario cannot be executed
// at all; failed expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cat, err := lib.Catalog()
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}
		cfg.catalog = cat
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	specs, err := CompileTableFiles(scenario.Tables...)
	if err != nil {
		return nil, err
	}

	eng := engine.New(cfg.catalog,
		engine.WithStore(st),
		engine.WithLogger(cfg.logger),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	)

	ctx := context.Background()
	if len(specs) > 0 {
		if err := eng.LoadTables(ctx, specs...); err != nil {
			return nil, fmt.Errorf("failed to load tables: %w", err)
		}
	}

	h := &Harness{store: st, engine: eng, logger: cfg.logger}
	result := NewResult()

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}
	if err := h.checkLaws(ctx, scenario.Laws, result); err != nil {
		return nil, fmt.Errorf("failed to check laws: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// CompileTableFiles compiles the tables declared in each CUE file, in
// file order.
func CompileTableFiles(paths ...string) ([]ir.TableSpec, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	cctx := cuecontext.New()

	var specs []ir.TableSpec
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read table file: %w", err)
		}
		v := cctx.CompileBytes(data, cue.Filename(p))
		tables, err := compiler.CompileTables(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		specs = append(specs, tables...)
	}
	return specs, nil
}

// call runs one engine call. Target failures are outcomes, not errors;
// only a failure to run or record the call is returned.
func (h *Harness) call(ctx context.Context, name string, batches []ir.IRArray, result *Result) (ir.CallRecord, error) {
	res, err := h.engine.Call(ctx, name, batches...)
	if res.Record.ID == "" || (err != nil && res.Record.Outcome == ir.OutcomeOK) {
		return ir.CallRecord{}, err
	}
	result.AddCall(res.Record)
	return res.Record, nil
}

// executeSteps runs each step and checks its expect clause.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		batches, err := convertBatches(step.Args)
		if err != nil {
			return fmt.Errorf("step %d: failed to convert args: %w", i, err)
		}

		rec, err := h.call(ctx, step.Call, batches, result)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, rec) {
				result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Call, msg))
			}
		}

		h.logger.Info("step completed",
			"step", i,
			"call", step.Call,
			"seq", rec.Seq,
			"outcome", rec.Outcome,
		)
	}
	return nil
}

// checkExpect compares a recorded call with an expect clause.
func checkExpect(exp *Expect, rec ir.CallRecord) []string {
	var msgs []string

	if exp.Error != "" {
		if rec.Outcome != ir.OutcomeError {
			msgs = append(msgs, fmt.Sprintf("expected error %s, got result %s", exp.Error, render(rec.Result)))
		} else if rec.ErrorCode != exp.Error {
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %s: %s", exp.Error, rec.ErrorCode, rec.ErrorMessage))
		}
	}

	if exp.HasResult {
		want, err := convertToIRValue(exp.Result)
		switch {
		case err != nil:
			msgs = append(msgs, fmt.Sprintf("invalid expected result: %v", err))
		case rec.Outcome != ir.OutcomeOK:
			msgs = append(msgs, fmt.Sprintf("expected result %s, got error %s: %s", render(want), rec.ErrorCode, rec.ErrorMessage))
		case !sameIR(want, rec.Result):
			msgs = append(msgs, fmt.Sprintf("expected result %s, got %s", render(want), render(rec.Result)))
		}
	}

	if exp.Clause != nil && *exp.Clause != rec.Clause {
		msgs = append(msgs, fmt.Sprintf("expected clause %d, got %d", *exp.Clause, rec.Clause))
	}
	return msgs
}

// checkLaws evaluates each law.
func (h *Harness) checkLaws(ctx context.Context, laws []Law, result *Result) error {
	for i, law := range laws {
		args, err := convertList(law.Args)
		if err != nil {
			return fmt.Errorf("law %d: failed to convert args: %w", i, err)
		}

		var msg string
		switch law.Type {
		case LawGrouping:
			msg, err = h.checkGrouping(ctx, law.Call, args, result)
		case LawStability:
			msg, err = h.checkStability(ctx, law.Call, args, result)
		case LawImmutability:
			alt, convErr := convertList(law.Alt)
			if convErr != nil {
				return fmt.Errorf("law %d: failed to convert alt: %w", i, convErr)
			}
			msg = h.checkImmutability(law.Call, args, alt)
		default:
			return fmt.Errorf("law %d: unknown law type %q", i, law.Type)
		}
		if err != nil {
			return fmt.Errorf("law %d: %w", i, err)
		}
		if msg != "" {
			result.AddError(fmt.Sprintf("law %d (%s %s): %s", i, law.Type, law.Call, msg))
		}
	}
	return nil
}

// checkGrouping calls name with every argument in one batch and then one
// argument per batch; both must agree.
func (h *Harness) checkGrouping(ctx context.Context, name string, args ir.IRArray, result *Result) (string, error) {
	whole, err := h.call(ctx, name, []ir.IRArray{args}, result)
	if err != nil {
		return "", err
	}

	split := make([]ir.IRArray, len(args))
	for i, a := range args {
		split[i] = ir.IRArray{a}
	}
	each, err := h.call(ctx, name, split, result)
	if err != nil {
		return "", err
	}

	if !sameOutcome(whole, each) {
		return fmt.Sprintf("f(all) = %s but f(a)(b)... = %s", describeOutcome(whole), describeOutcome(each)), nil
	}
	return "", nil
}

// checkStability calls name twice with the same arguments.
func (h *Harness) checkStability(ctx context.Context, name string, args ir.IRArray, result *Result) (string, error) {
	first, err := h.call(ctx, name, []ir.IRArray{args}, result)
	if err != nil {
		return "", err
	}
	second, err := h.call(ctx, name, []ir.IRArray{args}, result)
	if err != nil {
		return "", err
	}
	if !sameOutcome(first, second) {
		return fmt.Sprintf("first call = %s, second call = %s", describeOutcome(first), describeOutcome(second)), nil
	}
	return "", nil
}

// checkImmutability applies a shared partial application to the original
// trailing arguments, then to alt, then to the original again. The first
// and last results must agree. Not recorded in the trace.
func (h *Harness) checkImmutability(name string, args, alt ir.IRArray) string {
	fn, err := h.engine.Resolve(name)
	if err != nil {
		return err.Error()
	}

	cut := len(args) - len(alt)
	prefix := engine.DecodeBatch(args[:cut])
	rest := engine.DecodeBatch(args[cut:])

	partial, err := curry.Invoke(fn, prefix...)
	if err != nil {
		return fmt.Sprintf("partial application failed: %v", err)
	}
	if !curry.IsCallable(partial) {
		return fmt.Sprintf("%d argument(s) already saturate %s", cut, name)
	}

	before, errBefore := invokeIR(partial, rest)
	_, _ = invokeIR(partial, engine.DecodeBatch(alt))
	after, errAfter := invokeIR(partial, rest)

	switch {
	case (errBefore == nil) != (errAfter == nil):
		return fmt.Sprintf("outcome changed after applying alt: %v then %v", errBefore, errAfter)
	case errBefore != nil:
		if engine.Classify(errBefore) != engine.Classify(errAfter) {
			return fmt.Sprintf("error changed after applying alt: %v then %v", errBefore, errAfter)
		}
	case !sameIR(before, after):
		return fmt.Sprintf("result changed after applying alt: %s then %s", render(before), render(after))
	}
	return ""
}

func invokeIR(fn any, args []any) (ir.IRValue, error) {
	out, err := curry.Invoke(fn, args...)
	if err != nil {
		return nil, err
	}
	return engine.Encode(out)
}

func sameOutcome(a, b ir.CallRecord) bool {
	if a.Outcome != b.Outcome {
		return false
	}
	if a.Outcome == ir.OutcomeError {
		return a.ErrorCode == b.ErrorCode
	}
	return sameIR(a.Result, b.Result)
}

func describeOutcome(rec ir.CallRecord) string {
	if rec.Outcome == ir.OutcomeError {
		return "error " + rec.ErrorCode
	}
	return render(rec.Result)
}

// sameIR compares two values by canonical form.
func sameIR(a, b ir.IRValue) bool {
	ca, errA := ir.MarshalCanonical(a)
	cb, errB := ir.MarshalCanonical(b)
	return errA == nil && errB == nil && bytes.Equal(ca, cb)
}

func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// convertBatches converts YAML argument batches to IR.
func convertBatches(batches [][]any) ([]ir.IRArray, error) {
	out := make([]ir.IRArray, len(batches))
	for i, b := range batches {
		arr, err := convertList(b)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		out[i] = arr
	}
	return out, nil
}

func convertList(vals []any) (ir.IRArray, error) {
	arr := make(ir.IRArray, len(vals))
	for i, v := range vals {
		iv, err := convertToIRValue(v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		arr[i] = iv
	}
	return arr, nil
}

// convertToIRValue converts a YAML-decoded value to an IRValue.
// Integers stay integers and floats stay floats; {"$just": x} and
// {"$nothing": true} pass through as boxed values.
func convertToIRValue(val any) (ir.IRValue, error) {
	switch v := val.(type) {
	case nil:
		return ir.IRNull{}, nil
	case string:
		return ir.IRString(v), nil
	case int:
		return ir.IRInt(int64(v)), nil
	case int64:
		return ir.IRInt(v), nil
	case uint64:
		return nil, fmt.Errorf("integer %d overflows int64", v)
	case float64:
		return ir.FromNative(v)
	case bool:
		return ir.IRBool(v), nil
	case []any:
		arr := make(ir.IRArray, len(v))
		for i, elem := range v {
			iv, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = iv
		}
		return arr, nil
	case map[string]any:
		obj := make(ir.IRObject, len(v))
		for key, elem := range v {
			iv, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj[key] = iv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}
