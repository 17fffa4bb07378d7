package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the submission queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued submissions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, _, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer ctx.close()
			items, err := q.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for i, item := range items {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatUnix(item.CreatedAt),
					"u/" + item.Author,
					truncate(item.Subject, 60),
					item.OriginLink,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{Header: "#", Right: true},
				{Header: "Created"},
				{Header: "Author"},
				{Header: "Subject", MaxWidth: 60},
				{Header: "Origin"},
			}, rows))
			return nil
		},
	}
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and ledger totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, l, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer ctx.close()
			items, err := q.List(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := l.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			level := statusOK
			if len(items) == 0 {
				level = statusIdle
			}
			fmt.Fprintln(out, statusLine(out, "Queued", strconv.Itoa(len(items)), level))
			if len(items) > 0 {
				head := items[0]
				fmt.Fprintln(out, statusLine(out, "Next", fmt.Sprintf("%s (u/%s, %s)",
					truncate(head.Subject, 60), head.Author, formatUnix(head.CreatedAt)), statusOK))
			}
			fmt.Fprintln(out, statusLine(out, "Published", strconv.Itoa(len(entries)), statusOK))
			fmt.Fprintf(out, "Queue document: %s\n", q.Location())
			fmt.Fprintf(out, "Ledger document: %s\n", l.Location())
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every queued submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the queue without --yes")
			}
			q, _, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer ctx.close()
			n, err := q.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d submission(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the queue")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <origin-link>",
		Short: "Remove one queued submission by its origin link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, _, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer ctx.close()
			link := strings.TrimSpace(args[0])
			removed, err := q.Remove(cmd.Context(), link)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no queued submission has origin link %s", link)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", link)
			return nil
		},
	}
}
