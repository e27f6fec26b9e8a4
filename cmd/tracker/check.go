package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"timetracker.com/timetracker/app"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the database connection, schema and configured integrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				results, err := a.DB.Check(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
						fmt.Fprintf(out, "[ERROR] %s: %v\n", r.Table, r.Err)
						continue
					}
					fmt.Fprintf(out, "%s: %d rows\n", r.Table, r.Rows)
				}
				fmt.Fprintf(out, "slack: %t, mail: %t, archive: %t\n", a.Slack != nil, a.Mailer != nil, a.Archive != nil)

				if failed > 0 {
					return fmt.Errorf("%d table checks failed", failed)
				}
				return nil
			})
		},
	}
}
