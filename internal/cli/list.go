package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/vector/internal/lib"
	"github.com/roach88/vector/internal/registry"
	"github.com/roach88/vector/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Tables string // optional tables directory
}

// EntryInfo describes one callable name.
type EntryInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"` // "function" or "table"
	Arity int    `json:"arity"`
	Doc   string `json:"doc,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [module]",
		Short: "List callable names and their arities",
		Long: `List the utility modules of the standard catalog with the arity and
description of each name. With --tables, the tables compiled from that
directory are listed after the catalog.

Examples:
  vector list
  vector list logic
  vector list --tables ./tables --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			module := ""
			if len(args) == 1 {
				module = args[0]
			}
			return runList(opts, module, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tables, "tables", "", "also list the tables in this directory")

	return cmd
}

func runList(opts *ListOptions, module string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cat, err := lib.Catalog()
	if err != nil {
		return f.fail(ErrCodeGeneric, fmt.Sprintf("building catalog: %v", err))
	}

	modules := cat.Modules()
	if module != "" {
		if _, ok := cat.Module(module); !ok {
			return f.fail(ErrCodeNotFound, fmt.Sprintf("unknown module %q (have %v)", module, modules))
		}
		modules = []string{module}
	}

	entries := []EntryInfo{}
	for _, m := range modules {
		reg, _ := cat.Module(m)
		entries = append(entries, moduleEntries(reg)...)
	}

	if opts.Tables != "" {
		eng, err := newEngine(opts.RootOptions, cmd, engineConfig{tables: opts.Tables})
		if err != nil {
			return err
		}
		defer eng.Close()
		for _, spec := range eng.Tables() {
			t, err := eng.Table(spec.Name)
			if err != nil {
				return f.fail(ErrCodeGeneric, err.Error())
			}
			entries = append(entries, EntryInfo{Name: spec.Name, Kind: "table", Arity: t.Arity(), Doc: spec.Doc})
		}
	}

	if f.IsJSON() {
		return f.Success(entries)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s/%d\t%s\n", e.Name, e.Arity, e.Doc)
	}
	return tw.Flush()
}

// moduleEntries lists a registry in declaration order. A definition whose
// wrapper cannot be built is listed with arity -1.
func moduleEntries(reg *registry.Registry) []EntryInfo {
	var out []EntryInfo
	for _, name := range reg.Names() {
		def, _ := reg.Definition(name)
		arity, err := reg.Arity(name)
		if err != nil {
			arity = -1
		}
		out = append(out, EntryInfo{
			Name:  reg.Module() + "." + name,
			Kind:  "function",
			Arity: arity,
			Doc:   def.Doc,
		})
	}
	return out
}

// openStore opens the database at path. When mustExist is set a missing
// file is an error instead of a new empty log.
func openStore(f *OutputFormatter, path string, mustExist bool) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, f.fail(ErrCodeNotFound, fmt.Sprintf("database not found: %s", path))
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.fail(ErrCodeStore, fmt.Sprintf("opening database: %v", err))
	}
	return st, nil
}
