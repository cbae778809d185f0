package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smart-docs/internal/domain"
	"smart-docs/internal/render"
	"smart-docs/internal/source"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

type summarizeOptions struct {
	file   string
	repo   string
	format string
	theme  string
	width  int
}

func newSummarizeCmd(c *cli) *cobra.Command {
	opts := summarizeOptions{theme: c.cfg.Theme}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Load a document and print its summary",
		Example: `  smartdocs summarize --file README.md
  smartdocs summarize --repo https://github.com/owner/repo --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummarize(cmd, c, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "path to a .md or .txt file")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "GitHub repository URL")
	cmd.Flags().StringVar(&opts.format, "format", formatMarkdown, "output format (markdown, json)")
	cmd.Flags().StringVar(&opts.theme, "theme", opts.theme, "terminal theme (plain, auto, dark, light, notty, ...)")
	cmd.Flags().IntVar(&opts.width, "width", 80, "word wrap width for rendered markdown")
	cmd.MarkFlagsMutuallyExclusive("file", "repo")
	cmd.MarkFlagsOneRequired("file", "repo")
	return cmd
}

func runSummarize(cmd *cobra.Command, c *cli, opts summarizeOptions) error {
	if opts.format != formatMarkdown && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	var renderer *render.Renderer
	if opts.format == formatMarkdown {
		r, err := render.NewRenderer(opts.theme, opts.width)
		if err != nil {
			return err
		}
		renderer = r
	}

	ctx := cmd.Context()
	deps, err := c.deps(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	coord := deps.NewCoordinator(ctx)
	defer coord.Wait()

	var src source.Source
	if opts.file != "" {
		f, closer, err := source.OpenFile(opts.file, deps.Config.MaxUploadSize)
		if err != nil {
			return userError(err)
		}
		defer closer.Close()
		src = f
	} else {
		src = source.Repository{URL: opts.repo, Fetcher: deps.Fetcher}
	}

	doc, err := coord.Load(ctx, src)
	if err != nil {
		return userError(err)
	}
	deps.Log.Info("document loaded", "document_id", doc.ID, "origin", doc.Origin, "size_bytes", doc.SizeBytes)

	res, err := coord.RequestSummary().Wait(ctx)
	if err != nil {
		return userError(err)
	}

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		return writeJSON(out, doc, res)
	}
	rendered, err := renderer.Render(render.Markdown(&doc, res))
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

type summaryOutput struct {
	DocumentID  string               `json:"document_id"`
	Origin      domain.Origin        `json:"origin"`
	OriginLabel string               `json:"origin_label"`
	SizeBytes   int64                `json:"size_bytes"`
	Summary     domain.SummaryResult `json:"summary"`
}

func writeJSON(w io.Writer, doc domain.Document, res domain.SummaryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaryOutput{
		DocumentID:  doc.ID.String(),
		Origin:      doc.Origin,
		OriginLabel: doc.OriginLabel,
		SizeBytes:   doc.SizeBytes,
		Summary:     res,
	})
}

// userError keeps the cause for --log-level debug but leads with the message
// a user can act on.
func userError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) || errors.Is(err, domain.ErrSummaryGeneration) {
		return fmt.Errorf("%s (%w)", domain.UserMessage(err), err)
	}
	return err
}
