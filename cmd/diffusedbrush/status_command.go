package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"diffusedbrush/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories and external service readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range headerLines(out, "System Checks") {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				level := statusOK
				if !r.Passed {
					level = statusFailed
				}
				fmt.Fprintln(out, statusLine(out, r.Name, r.Detail, level))
			}
			if preflight.Failed(results) {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}
