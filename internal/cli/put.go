package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/record"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	ID     string
	Fields []string
	Lists  []string
	Other  []string
	Stamp  string
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <collection>",
		Short: "Insert or update one record",
		Long: `Insert a record (no --id) or update an existing one (--id).

The submitted fields describe the record's desired state: a field left
out, or given an empty value, is removed from the stored record rather
than stored as an empty string.

Example:
  regtab put org_infos \
    --field group_name='Example Group' \
    --field org_type='User Group' \
    --field region='Europe' \
    --list dm_structure='Board|Democratic Process'
  regtab put org_infos --id abc123 --field member_count='42'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "unique_id of the record to update (omit to insert)")
	cmd.Flags().StringArrayVar(&opts.Fields, "field", nil, "scalar field as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Lists, "list", nil, "list field as key=a|b|c (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Other, "other", nil, "replace the Other sentinel in a list field, key=text (repeatable)")
	cmd.Flags().StringVar(&opts.Stamp, "stamp", "", "dos_stamp override for imported reports")

	return cmd
}

func runPut(opts *PutOptions, key string, cmd *cobra.Command) error {
	rec, err := buildRecord(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid record flags", err)
	}

	e, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	op := merge.OpInsert
	if opts.ID != "" {
		op = merge.OpUpdate
	}

	res, err := e.editor.Apply(cmd.Context(), key, rec, op, merge.Options{StampOverride: opts.Stamp})
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s failed", op), err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(map[string]any{
			"op":        string(op),
			"unique_id": res.UniqueID,
			"records":   len(res.Collection),
			"revision":  res.Page.Revision,
		})
	}
	return out.Success(fmt.Sprintf("%s ok: unique_id=%s records=%d", op, res.UniqueID, len(res.Collection)))
}

// buildRecord assembles the incoming record from flag values.
func buildRecord(opts *PutOptions) (*record.Record, error) {
	rec := record.New()
	if opts.ID != "" {
		rec.Set(record.FieldUniqueID, record.Scalar(opts.ID))
	}

	for _, kv := range opts.Fields {
		key, val, err := splitKV(kv)
		if err != nil {
			return nil, err
		}
		// Empty values are legitimate: they request field removal.
		rec.Set(key, record.Scalar(val))
	}

	for _, kv := range opts.Lists {
		key, val, err := splitKV(kv)
		if err != nil {
			return nil, err
		}
		var elems record.List
		if val != "" {
			elems = record.List(strings.Split(val, "|"))
		}
		rec.Set(key, elems)
	}

	result := rec
	for _, kv := range opts.Other {
		key, val, err := splitKV(kv)
		if err != nil {
			return nil, err
		}
		result = merge.ReplaceOther(result, key, val)
	}
	return result, nil
}

func splitKV(kv string) (string, string, error) {
	key, val, found := strings.Cut(kv, "=")
	if !found || key == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", kv)
	}
	return key, val, nil
}
