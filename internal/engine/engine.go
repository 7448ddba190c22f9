package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/vector/internal/compiler"
	"github.com/roach88/vector/internal/curry"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/match"
	"github.com/roach88/vector/internal/registry"
	"github.com/roach88/vector/internal/store"
)

// tableModule is the module reported for undefined table names.
const tableModule = "table"

// Engine is a runtime session: a catalog of utility modules plus the
// clause tables bound against it.
//
// Every Call is stamped with a seq from the logical clock, given a
// content-addressed ID and, when a store is configured, appended to the
// call log.
//
// Engine is safe for concurrent use. Tables are immutable once loaded.
type Engine struct {
	catalog  *registry.Catalog
	store    *store.Store
	logger   *slog.Logger
	clock    SeqClock
	sessions SessionGenerator

	mu      sync.RWMutex
	session string
	specs   []ir.TableSpec // load order
	tables  map[string]*match.Table
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStore records every call in s.
func WithStore(s *store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the logical clock. Default: NewClock().
// Use ResumeClock to continue after the last seq in a store.
func WithClock(c SeqClock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSessionGenerator sets the session ID source. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) EngineOption {
	return func(e *Engine) {
		e.sessions = g
	}
}

// WithSession pins the session ID instead of generating one.
func WithSession(id string) EngineOption {
	return func(e *Engine) {
		e.session = id
	}
}

// New creates an Engine over catalog. catalog must not be nil.
func New(catalog *registry.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  catalog,
		logger:   slog.Default(),
		clock:    NewClock(),
		sessions: UUIDv7Generator{},
		tables:   make(map[string]*match.Table),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResumeClock returns a clock positioned after the highest seq in s.
func ResumeClock(ctx context.Context, s *store.Store) (*Clock, error) {
	last, err := s.GetLastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}
	return NewClockAt(last), nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *registry.Catalog {
	return e.catalog
}

// Session returns the current session ID, generating one on first use.
func (e *Engine) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionLocked()
}

func (e *Engine) sessionLocked() string {
	if e.session == "" {
		e.session = e.sessions.Generate()
	}
	return e.session
}

// NewSession starts a new session and returns its ID. The clock is not
// reset, so seq stays unique across sessions.
func (e *Engine) NewSession(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session = e.sessions.Generate()
	if e.store != nil && len(e.specs) > 0 {
		if err := e.store.WriteSessionTables(ctx, e.session, e.specs); err != nil {
			return "", fmt.Errorf("new session: %w", err)
		}
	}
	e.logger.Info("session started", "session", e.session)
	return e.session, nil
}

// LoadTables validates and binds specs.
//
// Loading is all-or-nothing: on any error no table from specs is bound.
// Validation failures are reported together as *TableValidationError;
// binding failures (an undefined name, a clause handler needing more
// arguments than its clause binds) are returned as they occur.
func (e *Engine) LoadTables(ctx context.Context, specs ...ir.TableSpec) error {
	return e.loadTables(ctx, specs, true)
}

// Preload binds specs like LoadTables but never writes them to the store.
// Replay uses it to evaluate a recorded session against tables supplied
// from outside the log.
func (e *Engine) Preload(ctx context.Context, specs ...ir.TableSpec) error {
	return e.loadTables(ctx, specs, false)
}

func (e *Engine) loadTables(ctx context.Context, specs []ir.TableSpec, record bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	known := func(name string) bool {
		_, loaded := e.tables[name]
		return loaded || e.catalog.Has(name)
	}
	errs := compiler.ValidateSet(specs, known)
	for _, s := range specs {
		if _, dup := e.tables[s.Name]; dup {
			errs = append(errs, compiler.ValidationError{
				Field:   fmt.Sprintf("table.%s", s.Name),
				Message: fmt.Sprintf("table %q is already loaded", s.Name),
				Code:    compiler.ErrDuplicateName,
			})
		}
	}
	if len(errs) > 0 {
		return &TableValidationError{Errors: errs}
	}

	pending := make(map[string]bool, len(specs))
	for _, s := range specs {
		pending[s.Name] = true
	}
	isTable := func(name string) bool {
		_, loaded := e.tables[name]
		return loaded || pending[name]
	}

	bound := make(map[string]*match.Table, len(specs))
	for _, s := range specs {
		t, err := e.bindTable(s, isTable)
		if err != nil {
			return err
		}
		bound[s.Name] = t
	}

	for name, t := range bound {
		e.tables[name] = t
	}
	e.specs = append(e.specs, specs...)

	if record && e.store != nil {
		if err := e.store.WriteSessionTables(ctx, e.sessionLocked(), e.specs); err != nil {
			return fmt.Errorf("load tables: %w", err)
		}
	}

	e.logger.Info("tables loaded", "count", len(specs), "total", len(e.specs))
	return nil
}

// Tables returns the loaded table specs in load order.
func (e *Engine) Tables() []ir.TableSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.specs)
}

// Table returns a loaded table by name.
func (e *Engine) Table(name string) (*match.Table, error) {
	return e.lookupTable(name)
}

func (e *Engine) lookupTable(name string) (*match.Table, error) {
	e.mu.RLock()
	t, ok := e.tables[name]
	e.mu.RUnlock()
	if !ok {
		return nil, &registry.UndefinedNameError{Module: tableModule, Name: name}
	}
	return t, nil
}

// Resolve returns the callable for name: a catalog wrapper for a
// qualified "module.name", otherwise a loaded table.
func (e *Engine) Resolve(name string) (curry.Callable, error) {
	if _, _, qualified := registry.Split(name); qualified {
		c, err := e.catalog.Resolve(name)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	t, err := e.lookupTable(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Result is the outcome of Engine.Call.
type Result struct {
	// Record is what was (or would be) written to the call log.
	Record ir.CallRecord

	// Value is the raw Go result, nil on error.
	Value any

	// Selection is set when name is a table and a first batch was given.
	Selection *match.Selection
}

// Call resolves name and feeds it each argument batch in turn:
// Call(ctx, "f", [a], [b]) evaluates f(a)(b).
//
// The call is recorded whether it succeeds or not. The returned error is
// the target's (or the engine's) error; Classify maps it to the recorded
// error code. A failure to write the record is returned wrapped, with the
// record still set on the result.
func (e *Engine) Call(ctx context.Context, name string, batches ...ir.IRArray) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	session := e.Session()

	args := make(ir.IRArray, len(batches))
	for i, b := range batches {
		if b == nil {
			b = ir.IRArray{}
		}
		args[i] = b
	}

	// Reject unencodable arguments before taking a seq, so the log has no
	// gaps.
	if _, err := ir.CallID(session, name, args, 0); err != nil {
		return Result{}, fmt.Errorf("call %s: %w", name, err)
	}
	seq := e.clock.Next()
	id := ir.MustCallID(session, name, args, seq)

	rec := ir.CallRecord{
		ID:            id,
		SessionID:     session,
		Seq:           seq,
		Name:          name,
		Args:          args,
		Clause:        -1,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	value, sel, callErr := e.evaluate(name, batches)
	if callErr == nil {
		rec.Result, callErr = encodeResult(name, value)
	}
	applyOutcome(&rec, sel, callErr)
	if callErr != nil {
		value = nil
	}

	e.logger.Debug("call",
		"session", session,
		"seq", seq,
		"name", name,
		"outcome", rec.Outcome,
		"code", rec.ErrorCode,
		"clause", rec.Clause,
	)

	res := Result{Record: rec, Value: value, Selection: sel}
	if e.store != nil {
		if err := e.store.WriteCall(ctx, rec); err != nil {
			e.logger.Error("failed to record call", "name", name, "seq", seq, "error", err)
			return res, &RecordError{Name: name, Seq: seq, Err: err}
		}
	}
	return res, callErr
}

// Explain reports which clause of table name a batch would select,
// without calling the handler or recording anything.
func (e *Engine) Explain(name string, batch ir.IRArray) (match.Selection, error) {
	t, err := e.lookupTable(name)
	if err != nil {
		return match.Selection{State: match.StateExhausted, Clause: -1}, err
	}
	return t.Explain(DecodeBatch(batch)...)
}

// evaluate runs a call without recording it.
func (e *Engine) evaluate(name string, batches []ir.IRArray) (any, *match.Selection, error) {
	fn, err := e.Resolve(name)
	if err != nil {
		return nil, nil, err
	}

	decoded := make([][]any, len(batches))
	for i, b := range batches {
		decoded[i] = DecodeBatch(b)
	}

	t, isTable := fn.(*match.Table)
	if !isTable || len(decoded) == 0 {
		out, err := curry.Apply(fn, decoded...)
		return out, nil, err
	}

	sel, err := t.Explain(decoded[0]...)
	if err != nil {
		return nil, &sel, err
	}
	out, err := t.Clauses()[sel.Clause].Handler().Call(sel.Bound...)
	if err != nil {
		return nil, &sel, err
	}

	rest := decoded[1:]
	if len(rest) > 0 && !curry.IsCallable(out) {
		return nil, &sel, fmt.Errorf("batch 1: result %T is not callable", out)
	}
	out, err = curry.Apply(out, rest...)
	return out, &sel, err
}

func encodeResult(name string, v any) (ir.IRValue, error) {
	out, err := Encode(v)
	if err != nil {
		return nil, newUnrepresentableError(name, v, err)
	}
	return out, nil
}

// applyOutcome fills the outcome fields of rec.
func applyOutcome(rec *ir.CallRecord, sel *match.Selection, err error) {
	if sel != nil && sel.State == match.StateMatched {
		rec.Clause = sel.Clause
	}
	if err != nil {
		rec.Outcome = ir.OutcomeError
		rec.Result = nil
		rec.ErrorCode = string(Classify(err))
		rec.ErrorMessage = err.Error()
		return
	}
	rec.Outcome = ir.OutcomeOK
}
