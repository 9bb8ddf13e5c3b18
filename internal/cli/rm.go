package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/record"
)

// NewRmCommand creates the rm command.
func NewRmCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <collection> <unique-id>",
		Short: "Delete one record",
		Long: `Delete the record with the given unique_id.

Deleting from a collection with a dependent child collection (Affiliate
Indicators) also removes every child record sharing the id, as one
transaction when the backend supports it.

Example:
  regtab rm org_infos abc123`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runRm(opts *RootOptions, key, id string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	rec := record.New()
	rec.Set(record.FieldUniqueID, record.Scalar(id))

	res, err := e.editor.Apply(cmd.Context(), key, rec, merge.OpDelete, merge.Options{})
	if err != nil {
		return WrapExitError(ExitFailure, "delete failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(map[string]any{
			"unique_id":        id,
			"records":          len(res.Collection),
			"children_removed": res.ChildrenRemoved,
		})
	}
	msg := fmt.Sprintf("deleted %s: records=%d", id, len(res.Collection))
	if res.ChildrenRemoved > 0 {
		msg = fmt.Sprintf("%s children_removed=%d", msg, res.ChildrenRemoved)
	}
	return out.Success(msg)
}
