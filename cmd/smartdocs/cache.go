package main

import (
	"github.com/spf13/cobra"
)

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached summaries and READMEs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := c.deps(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			n, err := deps.Cache.Purge(ctx)
			if err != nil {
				return err
			}
			printf(cmd, "purged %d cache entries\n", n)
			return nil
		},
	})
	return cmd
}
