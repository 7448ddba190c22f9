package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/ir"
	"github.com/roach88/vector/internal/queryir"
	"github.com/roach88/vector/internal/querysql"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Name     string   // optional - filter to one called name
	Outcome  string   // optional - ok or error
	Codes    []string // optional - error codes
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session string          `json:"session"`
	Calls   []ir.CallRecord `json:"calls"`
	Tables  []string        `json:"tables"`
	Stats   TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Total    int            `json:"total"`
	Errors   int            `json:"errors"`
	Dispatch int            `json:"dispatch"` // calls that selected a clause
	ByCode   map[string]int `json:"by_code,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded calls of a session",
		Long: `Show the calls recorded for a session in seq order, with their arguments,
outcome and the clause each table call dispatched to.

Examples:
  vector trace --db ./vector.db --session s1
  vector trace --db ./vector.db --session s1 --name classify
  vector trace --db ./vector.db --session s1 --outcome error
  vector trace --db ./vector.db --session s1 --code INCOMPLETE_MATCH,NOT_A_FUNCTION
  vector trace --db ./vector.db --session s1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only show calls to this name")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only show calls with this outcome (ok or error)")
	cmd.Flags().StringSliceVar(&opts.Codes, "code", nil, "only show calls that failed with these error codes")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	if opts.Outcome != "" && opts.Outcome != ir.OutcomeOK && opts.Outcome != ir.OutcomeError {
		return f.fail(ErrCodeBadArgs, fmt.Sprintf("invalid outcome %q: must be ok or error", opts.Outcome))
	}
	query, params, err := querysql.NewSQLCompiler().Compile(traceQuery(opts))
	if err != nil {
		return f.fail(ErrCodeBadArgs, err.Error())
	}

	st, err := openStore(f, opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	calls, err := st.QueryCalls(ctx, query, params...)
	if err != nil {
		return f.fail(ErrCodeStore, fmt.Sprintf("reading session: %v", err))
	}
	if len(calls) == 0 {
		if opts.filtered() {
			return f.fail(ErrCodeNotFound, fmt.Sprintf("no calls in session %q match the filters", opts.Session))
		}
		return f.fail(ErrCodeNotFound, fmt.Sprintf("no calls recorded for session %q", opts.Session))
	}

	tables, err := st.ReadSessionTables(ctx, opts.Session)
	if err != nil {
		return f.fail(ErrCodeStore, fmt.Sprintf("reading session tables: %v", err))
	}

	result := TraceResult{
		Session: opts.Session,
		Calls:   calls,
		Tables:  []string{},
		Stats:   traceStats(calls),
	}
	for _, t := range tables {
		result.Tables = append(result.Tables, t.Name)
	}

	if f.IsJSON() {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Session %s\n", result.Session)
	if len(result.Tables) > 0 {
		fmt.Fprintf(f.Writer, "Tables: %s\n", strings.Join(result.Tables, ", "))
	}
	fmt.Fprintln(f.Writer)
	for _, rec := range calls {
		fmt.Fprintln(f.Writer, formatCall(rec))
	}
	fmt.Fprintf(f.Writer, "\n%d call(s), %d error(s), %d dispatched\n",
		result.Stats.Total, result.Stats.Errors, result.Stats.Dispatch)
	return nil
}

func (o *TraceOptions) filtered() bool {
	return o.Name != "" || o.Outcome != "" || len(o.Codes) > 0
}

// traceQuery selects the session's calls narrowed by the optional filters.
func traceQuery(opts *TraceOptions) queryir.Select {
	preds := []queryir.Predicate{
		queryir.Equals{Field: "session_id", Value: ir.IRString(opts.Session)},
	}
	if opts.Name != "" {
		preds = append(preds, queryir.Equals{Field: "name", Value: ir.IRString(opts.Name)})
	}
	if opts.Outcome != "" {
		preds = append(preds, queryir.Equals{Field: "outcome", Value: ir.IRString(opts.Outcome)})
	}
	if len(opts.Codes) > 0 {
		codes := make([]ir.IRValue, len(opts.Codes))
		for i, c := range opts.Codes {
			codes[i] = ir.IRString(c)
		}
		preds = append(preds, queryir.In{Field: "error_code", Values: codes})
	}
	return queryir.Select{From: "calls", Filter: queryir.And{Predicates: preds}}
}

func traceStats(calls []ir.CallRecord) TraceStats {
	stats := TraceStats{Total: len(calls)}
	for _, rec := range calls {
		if rec.Clause >= 0 {
			stats.Dispatch++
		}
		if rec.Outcome != ir.OutcomeError {
			continue
		}
		stats.Errors++
		if stats.ByCode == nil {
			stats.ByCode = map[string]int{}
		}
		stats.ByCode[rec.ErrorCode]++
	}
	return stats
}

// formatCall renders one record as a trace line:
//
//	[3] classify[7] -> "int" (clause 1)
func formatCall(rec ir.CallRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s%s -> ", rec.Seq, rec.Name, renderArgs(rec.Args))
	if rec.Outcome == ir.OutcomeError {
		fmt.Fprintf(&b, "error %s: %s", rec.ErrorCode, rec.ErrorMessage)
	} else {
		b.WriteString(renderValue(rec.Result))
	}
	if rec.Clause >= 0 {
		fmt.Fprintf(&b, " (clause %d)", rec.Clause)
	}
	return b.String()
}

// renderArgs writes each batch as canonical JSON, one after another.
func renderArgs(args ir.IRArray) string {
	var b strings.Builder
	for _, batch := range args {
		b.WriteString(renderValue(batch))
	}
	return b.String()
}

func renderValue(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
