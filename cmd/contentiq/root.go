package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contentiq",
		Short:         "AI crawler revenue calculator",
		Long:          "Estimate what a website's content is worth as AI training data, from the command line or as a web service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newEstimateCmd(), newServeCmd())
	return rootCmd
}
