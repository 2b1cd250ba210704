package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mailcast",
		Short:         "Turn email newsletters into podcast episodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newConsumeCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newFeedCommand())

	return rootCmd
}
