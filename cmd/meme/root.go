package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/bootstrap"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
)

// options holds the flags shared by every subcommand.
type options struct {
	quotes    []string
	outputDir string
	imagesDir string
}

// generateOptions holds the flags of the root command.
type generateOptions struct {
	path   string
	url    string
	body   string
	author string
	width  int
}

func newRootCmd() *cobra.Command {
	var (
		opts    options
		genOpts generateOptions
	)

	cmd := &cobra.Command{
		Use:   "meme",
		Short: "Caption a photo with a quote",
		Long: `meme renders a quote onto a photo and prints where the result was written.

Anything left unset is chosen at random: the photo from the configured image
directory and the quote from the configured quote files. Supplying only a body
or only an author completes the caption from the loaded quotes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts, genOpts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringSliceVar(&opts.quotes, "quotes", nil, "Quote files to load (txt, csv, docx, pdf); replaces the configured sources")
	pf.StringVar(&opts.outputDir, "output-dir", "", "Directory the meme is written to")
	pf.StringVar(&opts.imagesDir, "images-dir", "", "Directory random photos are drawn from")

	f := cmd.Flags()
	f.StringVar(&genOpts.path, "path", "", "Path to the photo")
	f.StringVar(&genOpts.url, "url", "", "URL of a photo to download")
	f.StringVar(&genOpts.body, "body", "", "Quote body")
	f.StringVar(&genOpts.author, "author", "", "Quote author")
	f.IntVar(&genOpts.width, "width", 0, "Output width in pixels (default from config)")
	cmd.MarkFlagsMutuallyExclusive("path", "url")

	cmd.AddCommand(newIngestCmd(&opts))

	return cmd
}

// loadConfig loads the profile named by APP_ENVIRONMENT and applies flag
// overrides before validation.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(bootstrap.Profile())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if len(opts.quotes) > 0 {
		cfg.Quotes.Sources = opts.quotes
	}

	if opts.outputDir != "" {
		cfg.Meme.OutputDir = opts.outputDir
	}

	if opts.imagesDir != "" {
		cfg.Images.Dir = opts.imagesDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func runGenerate(cmd *cobra.Command, opts options, genOpts generateOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := bootstrap.NewLogger(cfg, cmd.ErrOrStderr())

	components, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	meme, err := components.Memes.Generate(ctx, app.GenerateRequest{
		ImagePath: genOpts.path,
		ImageURL:  genOpts.url,
		Body:      genOpts.body,
		Author:    genOpts.author,
		Width:     genOpts.width,
	})
	if err != nil {
		return err
	}

	logger.Debug("meme generated",
		slog.String("source", meme.Source),
		slog.Int("width", meme.Width),
		slog.Int("height", meme.Height),
	)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Meme generated at: %s\n", meme.Path)

	return err
}
