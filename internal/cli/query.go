package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regtab/regtab/internal/query"
	"github.com/regtab/regtab/internal/schema"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Object      string
	Subject     string
	Type        string
	Affiliate   string
	Region      string
	Country     string
	Partnership string
	From        string
	To          string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a read-only query across collections",
		Long: `Run one (object, subject, filters) query over the stored collections.

Objects: affiliates, finance, reports.
Subjects per object:
  affiliates: belongs-to, compliant-with-reporting,
              recognised-in-year, derecognised-in-year
  finance:    reported-by
  reports:    reported-by

Example:
  regtab query --object affiliates --subject belongs-to --type 'User Group'
  regtab query --object affiliates --subject compliant-with-reporting --type Chapter
  regtab query --object reports --subject reported-by \
    --partnership 'GLAM Institutions' --from 2024-07-01 --to 2025-06-30`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Object, "object", "", "query object (required)")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "query subject (required)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "affiliate type filter")
	cmd.Flags().StringVar(&opts.Affiliate, "affiliate", "", "specific affiliate by group name")
	cmd.Flags().StringVar(&opts.Region, "region", "", "region filter")
	cmd.Flags().StringVar(&opts.Country, "country", "", "specific country filter")
	cmd.Flags().StringVar(&opts.Partnership, "partnership", "", "partnership filter for report queries")
	cmd.Flags().StringVar(&opts.From, "from", "", "date range start (inclusive)")
	cmd.Flags().StringVar(&opts.To, "to", "", "date range end (inclusive)")
	_ = cmd.MarkFlagRequired("object")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	e, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := loadDataset(cmd.Context(), e)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load collections", err)
	}

	d := query.Descriptor{
		Object:  query.Object(opts.Object),
		Subject: query.Subject(opts.Subject),
		Filters: query.Filters{
			Type:        opts.Type,
			Affiliate:   opts.Affiliate,
			Region:      opts.Region,
			Country:     opts.Country,
			Partnership: opts.Partnership,
			Dates:       query.DateRange{Start: opts.From, End: opts.To},
		},
	}

	res, err := e.query.Execute(data, d)
	if err != nil {
		if query.IsZeroDenominator(err) {
			return WrapExitError(ExitFailure, "no data", err)
		}
		return WrapExitError(ExitCommandError, "query failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(res)
	}
	return out.Success(renderResult(res))
}

// loadDataset fetches and parses every collection a query may touch.
// Missing pages load as empty collections.
func loadDataset(ctx context.Context, e *env) (query.Dataset, error) {
	keys := []string{
		schema.KeyOrgInfos,
		schema.KeyActivitiesReports,
		schema.KeyFinancialReports,
		schema.KeyGrantReports,
	}
	data := make(query.Dataset, len(keys))
	for _, key := range keys {
		loaded, err := e.editor.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		data[key] = loaded.Collection
	}
	return data, nil
}

// renderResult produces the text form of a query result.
func renderResult(res *query.Result) string {
	var b strings.Builder
	switch res.Kind {
	case query.KindCount:
		fmt.Fprintf(&b, "%d", res.Count)
	case query.KindPercentage:
		fmt.Fprintf(&b, "%d%%", res.Percentage)
	case query.KindList:
		if len(res.Lines) == 0 {
			b.WriteString("(none)")
			break
		}
		for i, line := range res.Lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("* ")
			b.WriteString(line)
		}
	case query.KindBuckets:
		for i, bucket := range res.Buckets {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "== %s ==", bucket.Name)
			for _, line := range bucket.Lines {
				b.WriteString("\n* ")
				b.WriteString(line)
			}
		}
	}
	return b.String()
}
