package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <collection>",
		Short: "Rewrite a collection page in canonical form",
		Long: `Parse a collection page and rewrite it in canonical form: schema field
order, normalized escaping, four-space indentation. Content is unchanged;
a page already in canonical form is not rewritten.

Example:
  regtab fmt org_infos`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runFmt(opts *RootOptions, key string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.editor.Canonicalize(cmd.Context(), key)
	if err != nil {
		return WrapExitError(ExitFailure, "canonicalize failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(map[string]any{
			"records":  len(res.Collection),
			"revision": res.Page.Revision,
		})
	}
	return out.Success(fmt.Sprintf("canonicalized: records=%d revision=%d", len(res.Collection), res.Page.Revision))
}
