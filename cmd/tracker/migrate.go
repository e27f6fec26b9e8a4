package main

import (
	"github.com/spf13/cobra"
	"timetracker.com/timetracker/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				if err := a.DB.Migrate(cmd.Context()); err != nil {
					return err
				}
				a.Log.Info("schema migrated")
				return nil
			})
		},
	}
}
