package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd constructs the stagectl root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stagectl",
		Short:         "Inspect IVF stage resolution offline",
		Long:          "stagectl runs the stage resolver against YAML inputs and prints the expected milestone timelines.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newTimelineCmd())
	return cmd
}
