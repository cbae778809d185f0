package main

import (
	"github.com/spf13/cobra"

	"smart-docs/internal/source"
)

func newFetchCmd(c *cli) *cobra.Command {
	var repo string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the README of a GitHub repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := c.deps(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			doc, err := source.Repository{URL: repo, Fetcher: deps.Fetcher}.Load(ctx)
			if err != nil {
				return userError(err)
			}
			printf(cmd, "%s\n", doc.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "GitHub repository URL")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}
