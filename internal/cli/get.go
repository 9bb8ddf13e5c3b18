package cli

import (
	"github.com/spf13/cobra"

	"github.com/regtab/regtab/internal/record"
	"github.com/regtab/regtab/internal/tablit"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <collection>",
		Short: "Fetch and print a collection",
		Long: `Fetch a collection page, parse it, and print it.

Text output is the canonical table-literal form; JSON output is one
object per record.

Example:
  regtab get org_infos
  regtab get activities_reports --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGet(opts *RootOptions, key string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	loaded, err := e.editor.Load(cmd.Context(), key)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load collection", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(collectionToJSON(loaded.Collection))
	}
	return out.Success(tablit.Serialize(loaded.Collection, loaded.Schema.FieldOrder()))
}

// collectionToJSON renders records as plain maps for JSON output. Field
// order is lost in JSON objects; consumers wanting canonical order use
// the text form.
func collectionToJSON(coll record.Collection) []map[string]any {
	out := make([]map[string]any, len(coll))
	for i, rec := range coll {
		m := make(map[string]any, rec.Len())
		for _, key := range rec.Keys() {
			v, _ := rec.Get(key)
			switch val := v.(type) {
			case record.Scalar:
				m[key] = string(val)
			case record.List:
				m[key] = []string(val)
			}
		}
		out[i] = m
	}
	return out
}
