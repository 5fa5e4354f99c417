package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/meme-generator/internal/bootstrap"
	"github.com/jsamuelsen/meme-generator/internal/platform/telemetry"
)

func newIngestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Print the quotes found in source files",
		Long: `ingest parses each file with the ingestor for its extension and prints
every quote in document order, one per line. Records that could not be parsed
are reported on stderr and do not stop ingestion.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, *opts, args)
		},
	}
}

func runIngest(cmd *cobra.Command, opts options, paths []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := bootstrap.NewLogger(cfg, cmd.ErrOrStderr())
	dispatcher := bootstrap.NewDispatcher(cfg, telemetry.MustPipelineMetrics(), logger)

	result, err := dispatcher.ParseAll(ctx, paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, q := range result.Quotes {
		if _, err := fmt.Fprintln(out, q.String()); err != nil {
			return err
		}
	}

	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d record(s) skipped\n", n)
	}

	return nil
}
