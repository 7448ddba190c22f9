package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/engine"
	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/lib"
	"github.com/roach88/vector/internal/store"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Tables   string
	Database string
	Session  string
	Explain  bool
}

// CallOutput is the JSON payload of a call.
type CallOutput struct {
	Record ir.CallRecord `json:"record"`
}

// ExplainOutput is the JSON payload of call --explain.
type ExplainOutput struct {
	Table      string `json:"table"`
	State      string `json:"state"`
	Clause     int    `json:"clause"`
	Candidates int    `json:"candidates"`
	Tested     int    `json:"tested"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <name> [batch-json ...]",
		Short: "Call a function or table",
		Long: `Call a qualified catalog name or a table, feeding it each argument batch
in turn. Every batch is a JSON array; "call f '[1]' '[2]'" evaluates f(1)(2).

Boxed values are written {"$just": v} and {"$nothing": true}. A result
that is still waiting for arguments prints as {"$callable": "..."}.

With --db the call is appended to the SQLite call log, continuing the
logical clock from the last recorded seq. --explain reports which clause
of a table the first batch selects without calling anything.

Exit codes:
  0 - The call succeeded
  1 - The call failed (INCOMPLETE_MATCH, ARGUMENT_TYPE, ...)
  2 - Command error (bad batch JSON, tables failed to load, database error)

Examples:
  vector call logic.and '[true]' '[false]'
  vector call classify '[0]' --tables ./tables
  vector call classify '[7]' --tables ./tables --explain
  vector call classify '[7]' --tables ./tables --db ./vector.db --session s1`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tables, "tables", "", "directory of CUE table files to load")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the call in this SQLite database")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID (default: a new UUIDv7)")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "show the clause a table would select")

	return cmd
}

func runCall(opts *CallOptions, name string, raw []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	batches, err := parseBatches(raw)
	if err != nil {
		return f.fail(ErrCodeBadArgs, err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(opts.RootOptions, cmd, engineConfig{
		tables:  opts.Tables,
		db:      opts.Database,
		session: opts.Session,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.Explain {
		return explainCall(f, eng.Engine, name, batches)
	}

	res, callErr := eng.Call(ctx, name, batches...)
	rec := res.Record
	if rec.ID == "" {
		return f.fail(ErrCodeGeneric, callErr.Error())
	}
	if engine.IsRecordError(callErr) {
		return f.fail(ErrCodeStore, callErr.Error())
	}

	if rec.Outcome == ir.OutcomeError {
		if f.IsJSON() {
			_ = f.Failure(rec.ErrorCode, rec.ErrorMessage, CallOutput{Record: rec})
		} else {
			fmt.Fprintf(f.Writer, "%s%s -> error %s: %s\n", rec.Name, renderArgs(rec.Args), rec.ErrorCode, rec.ErrorMessage)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", rec.ErrorCode, rec.ErrorMessage))
	}

	if f.IsJSON() {
		return f.Success(CallOutput{Record: rec})
	}
	fmt.Fprintf(f.Writer, "%s%s -> %s\n", rec.Name, renderArgs(rec.Args), renderValue(rec.Result))
	if rec.Clause >= 0 {
		f.VerboseLog("clause %d", rec.Clause)
	}
	f.VerboseLog("session %s seq %d id %s", rec.SessionID, rec.Seq, rec.ID)
	return nil
}

func explainCall(f *OutputFormatter, eng *engine.Engine, name string, batches []ir.IRArray) error {
	first := ir.IRArray{}
	if len(batches) > 0 {
		first = batches[0]
	}

	sel, err := eng.Explain(name, first)
	out := ExplainOutput{
		Table:      name,
		State:      sel.State.String(),
		Clause:     sel.Clause,
		Candidates: sel.Candidates,
		Tested:     sel.Tested,
	}
	if err != nil {
		code := string(engine.Classify(err))
		if f.IsJSON() {
			_ = f.Failure(code, err.Error(), out)
		} else {
			fmt.Fprintf(f.Writer, "%s%s: %s\n", name, renderValue(first), sel)
		}
		return WrapExitError(ExitFailure, code, err)
	}

	if f.IsJSON() {
		return f.Success(out)
	}
	fmt.Fprintf(f.Writer, "%s%s: %s\n", name, renderValue(first), sel)
	return nil
}

// parseBatches decodes each argument as a JSON array.
func parseBatches(raw []string) ([]ir.IRArray, error) {
	batches := make([]ir.IRArray, 0, len(raw))
	for i, s := range raw {
		v, err := ir.UnmarshalIRValue([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("batch %d: invalid JSON: %v", i+1, err)
		}
		arr, ok := v.(ir.IRArray)
		if !ok {
			return nil, fmt.Errorf("batch %d: expected a JSON array, got %s", i+1, ir.TypeName(v))
		}
		batches = append(batches, arr)
	}
	return batches, nil
}

// engineConfig selects what newEngine wires in.
type engineConfig struct {
	tables  string // tables directory, optional
	db      string // database path, optional
	session string // pinned session, optional

	// replay opens an existing database only and binds tables without
	// recording them.
	replay bool
}

// engineHandle owns the engine's store.
type engineHandle struct {
	*engine.Engine
	store *store.Store
}

// Close closes the store, if any.
func (h *engineHandle) Close() {
	if h.store != nil {
		_ = h.store.Close()
	}
}

// newEngine builds an engine over the standard catalog. Failures are
// reported on the command's formatter and returned as exit errors.
func newEngine(opts *RootOptions, cmd *cobra.Command, cfg engineConfig) (*engineHandle, error) {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	cat, err := lib.Catalog()
	if err != nil {
		return nil, f.fail(ErrCodeGeneric, fmt.Sprintf("building catalog: %v", err))
	}

	engOpts := []engine.EngineOption{engine.WithLogger(logger)}
	h := &engineHandle{}

	if cfg.db != "" {
		st, err := openStore(f, cfg.db, cfg.replay)
		if err != nil {
			return nil, err
		}
		h.store = st
		clock, err := engine.ResumeClock(ctx, st)
		if err != nil {
			h.Close()
			return nil, f.fail(ErrCodeStore, err.Error())
		}
		engOpts = append(engOpts, engine.WithStore(st), engine.WithClock(clock))
	}
	if cfg.session != "" {
		engOpts = append(engOpts, engine.WithSession(cfg.session))
	}
	h.Engine = engine.New(cat, engOpts...)

	if cfg.tables != "" {
		loaded, errs := LoadTables(cfg.tables, LoadModeFailFast)
		if len(errs) > 0 {
			h.Close()
			return nil, loadFailure(f, errs)
		}
		f.VerboseLog("loaded %d table(s) from %d file(s)", len(loaded.Tables), loaded.FileCount)

		bind := h.LoadTables
		if cfg.replay {
			bind = h.Preload
		}
		if err := bind(ctx, loaded.Tables...); err != nil {
			h.Close()
			var tv *engine.TableValidationError
			if errors.As(err, &tv) {
				return nil, f.fail(tv.Errors[0].Code, err.Error())
			}
			return nil, f.fail(string(engine.Classify(err)), err.Error())
		}
	}
	return h, nil
}
