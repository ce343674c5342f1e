package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "orchestra",
		Short:         "orchestra deploys declarative topology templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newPlanCmd(app))
	cmd.AddCommand(newDeployCmd(app))
	cmd.AddCommand(newUndeployCmd(app))
	cmd.AddCommand(newShowCmd(app))

	return cmd
}
