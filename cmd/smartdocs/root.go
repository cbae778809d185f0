package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"smart-docs/internal/app"
	"smart-docs/internal/config"
	"smart-docs/internal/logger"
)

// cli carries configuration shared by every subcommand.
type cli struct {
	cfg      config.Config
	logLevel string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	c := &cli{cfg: cfg}

	root := &cobra.Command{
		Use:   "smartdocs",
		Short: "Summarize markdown documents and GitHub READMEs",
		Long: `smartdocs loads one document at a time and asks the configured
summary provider for a structured analysis.

Providers, storage and caching are selected with the same environment
variables the gateway reads (SUMMARY_PROVIDER, STORE_PROVIDER, ...).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newSummarizeCmd(c),
		newFetchCmd(c),
		newHistoryCmd(c),
		newCacheCmd(c),
	)
	return root
}

// deps assembles providers with diagnostics on the command's stderr.
func (c *cli) deps(ctx context.Context, cmd *cobra.Command) (app.Deps, error) {
	return app.Assemble(ctx, c.cfg, c.logger(cmd))
}

func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	return logger.NewWithWriter(c.logLevel, "text", cmd.ErrOrStderr())
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
