package main

import (
	"github.com/spf13/cobra"
)

const (
	groupPasses  = "passes"
	groupInspect = "inspect"
	groupSetup   = "setup"
)

// newRootCommand wires every subcommand. All but "config init" load the
// configuration before running.
func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "diffusedbrush",
		Short: "Turn subject comments into generated images posted to Reddit",
		Long: "diffusedbrush reads subject requests from an intake thread, queues them, and publishes\n" +
			"the oldest one per run as a generated image. Removed posts are dropped from the\n" +
			"ledger and the submitter is told.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.AddGroup(
		&cobra.Group{ID: groupPasses, Title: "Passes:"},
		&cobra.Group{ID: groupInspect, Title: "Inspection:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	addToGroup(rootCmd, groupPasses, newRunCommands(ctx)...)
	addToGroup(rootCmd, groupInspect,
		newStatusCommand(ctx),
		newLogsCommand(ctx),
		newQueueCommand(ctx),
		newLedgerCommand(ctx),
	)
	addToGroup(rootCmd, groupSetup,
		newTestNotifyCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}

func addToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.GroupID = group
		root.AddCommand(cmd)
	}
}
