package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"diffusedbrush/internal/platform"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect published records",
	}
	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List published records awaiting reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, l, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer ctx.close()
			entries, err := l.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Ledger is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.PostID,
					"u/" + entry.Author,
					truncate(entry.Subject, 48),
					platform.PostLink(entry.PostID),
					entry.ArtifactLink,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{Header: "Post"},
				{Header: "Author"},
				{Header: "Subject", MaxWidth: 48},
				{Header: "Link"},
				{Header: "Image"},
			}, rows))
			return nil
		},
	})
	return ledgerCmd
}
