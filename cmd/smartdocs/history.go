package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [document-id]",
		Short: "List past documents, or print the stored summary of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}
			ctx := cmd.Context()
			deps, err := c.deps(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid document id %q: %w", args[0], err)
				}
				doc, err := deps.Store.GetDocument(ctx, id)
				if err != nil {
					return err
				}
				sum, err := deps.Store.GetSummary(ctx, id)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), doc, sum.Result)
			}

			records, err := deps.Store.ListDocuments(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printf(cmd, "no documents yet\n")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tORIGIN\tLABEL\tSIZE\tLOADED\tSUMMARY")
			for _, r := range records {
				summarized := "no"
				if r.HasSummary {
					summarized = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.Origin, r.OriginLabel, r.SizeBytes, r.LoadedAt.Local().Format(time.DateTime), summarized)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of documents to list (0 for all)")
	return cmd
}
