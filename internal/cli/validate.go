package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <collection>",
		Short: "Check a collection page against its schema",
		Long: `Parse a collection page and check every record against the collection
schema: unknown fields, kind mismatches, missing or duplicate unique_id
values. Nothing is written.

Exit code 0 means the page is clean; 1 means issues were found.

Example:
  regtab validate org_infos`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, key string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	loaded, err := e.editor.Load(cmd.Context(), key)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load collection", err)
	}

	issues := loaded.Schema.Validate(loaded.Collection)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if len(issues) == 0 {
		if opts.Format == "json" {
			return out.Success(map[string]any{"records": len(loaded.Collection), "issues": []string{}})
		}
		return out.Success(fmt.Sprintf("ok: %d records", len(loaded.Collection)))
	}

	if opts.Format == "json" {
		rendered := make([]string, len(issues))
		for i, issue := range issues {
			rendered[i] = issue.String()
		}
		_ = out.Success(map[string]any{"records": len(loaded.Collection), "issues": rendered})
	} else {
		var b strings.Builder
		for i, issue := range issues {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(issue.String())
		}
		_ = out.Success(b.String())
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation issues", len(issues)))
}
