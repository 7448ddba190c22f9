package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/engine"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
	Tables   string // optional - tables to replay against
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []engine.ReplayReport `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	TotalCalls    int                   `json:"total_calls"`
	Deterministic bool                  `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded calls and verify determinism",
		Long: `Re-evaluate every recorded call of a session and compare it with the log.

Each call's ID, outcome, error code, selected clause and result must come
out identical. Sessions are replayed against the tables they recorded,
or against --tables when given. Replay never writes to the database.

Exit codes:
  0 - Every call reproduced
  1 - At least one call diverged
  2 - Command error (database not found, etc.)

Examples:
  vector replay --db ./vector.db
  vector replay --db ./vector.db --session s1
  vector replay --db ./vector.db --session s1 --tables ./tables --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")
	cmd.Flags().StringVar(&opts.Tables, "tables", "", "replay against the tables in this directory")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		st, err := openStore(f, opts.Database, true)
		if err != nil {
			return err
		}
		summaries, err := st.ListSessions(ctx)
		_ = st.Close()
		if err != nil {
			return f.fail(ErrCodeStore, fmt.Sprintf("listing sessions: %v", err))
		}
		for _, s := range summaries {
			sessions = append(sessions, s.ID)
		}
	}

	result := ReplayResult{Sessions: []engine.ReplayReport{}, Deterministic: true}
	for _, id := range sessions {
		// One engine per session: recorded tables are bound per engine.
		eng, err := newEngine(opts.RootOptions, cmd, engineConfig{
			tables:  opts.Tables,
			db:      opts.Database,
			session: id,
			replay:  true,
		})
		if err != nil {
			return err
		}
		report, err := eng.Replay(ctx, id)
		eng.Close()
		if err != nil {
			return f.fail(ErrCodeStore, fmt.Sprintf("replaying session %s: %v", id, err))
		}
		f.VerboseLog("replayed %s: %d call(s), %d divergence(s)", id, report.Calls, len(report.Divergences))

		result.Sessions = append(result.Sessions, report)
		result.TotalSessions++
		result.TotalCalls += report.Calls
		if !report.OK() {
			result.Deterministic = false
		}
	}

	if opts.Session != "" && result.TotalCalls == 0 {
		return f.fail(ErrCodeNotFound, fmt.Sprintf("no calls recorded for session %q", opts.Session))
	}

	return outputReplay(f, result)
}

func outputReplay(f *OutputFormatter, result ReplayResult) error {
	var exitErr error
	if !result.Deterministic {
		exitErr = NewExitError(ExitFailure, "replay diverged from the recorded log")
	}

	if f.IsJSON() {
		var err error
		if exitErr != nil {
			err = f.Failure("E_NONDETERMINISTIC", exitErr.Error(), result)
		} else {
			err = f.Success(result)
		}
		if err != nil {
			return err
		}
		return exitErr
	}

	if result.TotalSessions == 0 {
		fmt.Fprintln(f.Writer, "No sessions to replay")
		return nil
	}
	for _, r := range result.Sessions {
		mark := "✓"
		if !r.OK() {
			mark = "✗"
		}
		fmt.Fprintf(f.Writer, "%s %s: %d call(s)\n", mark, r.Session, r.Calls)
		for _, d := range r.Divergences {
			fmt.Fprintf(f.Writer, "    [%d] %s %s: recorded %s, replayed %s\n", d.Seq, d.Name, d.Field, d.Recorded, d.Replayed)
		}
	}
	fmt.Fprintf(f.Writer, "\n%d session(s), %d call(s)", result.TotalSessions, result.TotalCalls)
	if result.Deterministic {
		fmt.Fprintln(f.Writer, ", deterministic")
	} else {
		fmt.Fprintln(f.Writer, ", diverged")
	}
	return exitErr
}
