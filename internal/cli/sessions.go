package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		Long: `List every session in the call log with its call and error counts and
the seq range it covers.

Example:
  vector sessions --db ./vector.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := openStore(f, opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions(cmd.Context())
	if err != nil {
		return f.fail(ErrCodeStore, err.Error())
	}

	if f.IsJSON() {
		return f.Success(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(f.Writer, "No sessions recorded")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tCALLS\tERRORS\tSEQ")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d-%d\n", s.ID, s.Calls, s.Errors, s.FirstSeq, s.LastSeq)
	}
	return tw.Flush()
}
