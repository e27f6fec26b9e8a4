package main

import (
	"github.com/spf13/cobra"
	"timetracker.com/timetracker/app"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tracker",
		Short:        "Timesheet tracking service and admin tools",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCheckCmd(),
		newSeedCmd(),
		newTokenCmd(),
		newExportCmd(),
	)
	return cmd
}

// withApp runs fn with a fully configured App and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
