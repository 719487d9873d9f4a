package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stock-portfolio",
		Short:         "Mocked stock portfolios built from investment strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newEventsCmd())

	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
