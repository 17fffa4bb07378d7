package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/runner"
)

func newRunCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newRunCommand(ctx),
		newSinglePassCommand(ctx, "ingest", "Scan the intake thread, queue new subjects, and acknowledge them",
			runner.Options{Ingest: true}),
		newSinglePassCommand(ctx, "reconcile", "Drop ledger entries whose posts were removed and notify submitters",
			runner.Options{Reconcile: true}),
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noReconcile bool
	var noPublish bool
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest, reconcile, and publish the oldest queued subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runner.Options{Ingest: true, Reconcile: !noReconcile, Publish: !noPublish}
			return executeRun(cmd, ctx, opts, every)
		},
	}
	cmd.Flags().BoolVar(&noReconcile, "no-reconcile", false, "Skip the ledger reconciliation pass")
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Skip publishing the queue head")
	cmd.Flags().DurationVar(&every, "every", 0, "Repeat the run at this interval until interrupted")
	return cmd
}

func newSinglePassCommand(ctx *commandContext, use, short string, opts runner.Options) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, opts, 0)
		},
	}
}

func executeRun(cmd *cobra.Command, ctx *commandContext, opts runner.Options, every time.Duration) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	r, backend, err := runner.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	ctx.backend = backend
	defer ctx.close()

	if every > 0 {
		return r.Loop(cmd.Context(), opts, every)
	}
	summary, err := r.Run(cmd.Context(), opts)
	printSummary(cmd.OutOrStdout(), opts, summary, err)
	return err
}

func printSummary(out io.Writer, opts runner.Options, summary runner.Summary, runErr error) {
	if summary.RunID == "" {
		return
	}
	for _, line := range headerLines(out, "Run "+summary.RunID) {
		fmt.Fprintln(out, line)
	}
	if opts.Ingest {
		fmt.Fprintln(out, passLine(out, summary, runner.StageIngest, "Ingest", fmt.Sprintf("%d candidate(s), %d new, %d acknowledged",
			summary.Scanned, summary.Added, summary.Accepted), statusOK))
	}
	if opts.Reconcile {
		level := statusIdle
		if len(summary.Removed) > 0 {
			level = statusOK
		}
		fmt.Fprintln(out, passLine(out, summary, runner.StageReconcile, "Reconcile", fmt.Sprintf("%d removed", len(summary.Removed)), level))
	}
	if opts.Publish {
		value, level := "nothing published", statusIdle
		if summary.Published != nil {
			value = fmt.Sprintf("%s -> %s", summary.Published.Entry.Subject, platform.PostLink(summary.Published.Entry.PostID))
			level = statusOK
		}
		fmt.Fprintln(out, passLine(out, summary, runner.StagePublish, "Publish", value, level))
	}
	fmt.Fprintln(out, statusLine(out, "Queue", fmt.Sprintf("%d pending", summary.QueueLen), statusOK))
	if runErr != nil {
		fmt.Fprintln(out, statusLine(out, "Errors", runErr.Error(), statusFailed))
	}
}

// passLine renders a pass result, overriding level when the pass failed.
func passLine(out io.Writer, summary runner.Summary, stage, label, value string, level statusLevel) string {
	if summary.PassFailed(stage) {
		return statusLine(out, label, value+" (failed)", statusFailed)
	}
	return statusLine(out, label, value, level)
}
