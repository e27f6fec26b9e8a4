package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"timetracker.com/timetracker/app"
	"timetracker.com/timetracker/security"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Print a session token for a user, for scripts and local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				u, err := a.Store.FindUserByUsername(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("user %s not found", args[0])
				}

				key, err := a.Config.SigningKey()
				if err != nil {
					return err
				}
				if ttl <= 0 {
					ttl = a.Config.JWT.TTL
				}
				token, _, err := security.CreateIdentityToken(security.Identity{
					UserID:   u.ID,
					Username: u.Username,
					Role:     string(u.Role),
				}, key, ttl, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to JWT_TTL")
	return cmd
}
