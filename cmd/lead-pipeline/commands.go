package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lead-pipeline/internal/apollo"
	"lead-pipeline/internal/workflow"
)

func newRootCmd() *cobra.Command {
	opts := &appOptions{}

	root := &cobra.Command{
		Use:   "lead-pipeline",
		Short: "Search, enrich and enroll B2B leads against the Apollo API",
		Long: `lead-pipeline runs the search → enrich → create contacts → enroll
workflow against the Apollo API, pacing every call through one rate limiter
and retrying server failures with exponential backoff.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(newRunCmd(opts), newSearchCmd(opts), newSequencesCmd(opts))
	return root
}

// withApp builds the app for one command invocation and tears it down after.
func withApp(cmd *cobra.Command, opts *appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, *opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close(context.Background())
	}()
	return fn(ctx, a)
}

func newRunCmd(opts *appOptions) *cobra.Command {
	var specPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the lead workflow described by a run-spec file",
		Long: `Runs one workflow and prints the result as JSON. Per-item failures are
reported in "errors" and an aborted run in "error"; both still exit 0.

Example:
  lead-pipeline run --spec runs/cto-berlin.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := workflow.LoadSpec(specPath)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				result := a.orchestrator.Run(ctx, spec)
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "path to a YAML or JSON run spec")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}

func newSearchCmd(opts *appOptions) *cobra.Command {
	var (
		filters apollo.PeopleSearchFilters
		page    int
		perPage int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search people and print the candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := a.client.SearchPeople(ctx, filters, page, perPage)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringSliceVar(&filters.PersonTitles, "title", nil, "person title (repeatable)")
	cmd.Flags().StringSliceVar(&filters.PersonLocations, "location", nil, "person location (repeatable)")
	cmd.Flags().StringSliceVar(&filters.PersonSeniorities, "seniority", nil, "seniority (repeatable)")
	cmd.Flags().StringSliceVar(&filters.OrganizationDomains, "domain", nil, "organization domain (repeatable)")
	cmd.Flags().StringVar(&filters.Keywords, "keywords", "", "free-text keywords")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "results per page (max 100)")
	return cmd
}

func newSequencesCmd(opts *appOptions) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "sequences",
		Short: "List outreach sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := a.client.SearchSequences(ctx, query, 1, apollo.MaxPerPage)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res.Sequences)
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "filter sequences by name")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
