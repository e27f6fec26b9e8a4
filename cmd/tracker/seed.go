package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"timetracker.com/timetracker/app"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/utils"
)

func newSeedCmd() *cobra.Command {
	var (
		username  string
		password  string
		usersFile string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first admin and optionally import users from CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			return withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				if err := a.DB.Migrate(ctx); err != nil {
					return err
				}

				admin, err := a.Store.FindUserByUsername(ctx, username)
				if err != nil {
					return err
				}
				if admin == nil {
					if password == "" {
						return fmt.Errorf("--password or SEED_ADMIN_PASSWORD is required to create %s", username)
					}
					hash, err := security.HashPassword(password)
					if err != nil {
						return err
					}
					admin = &model.User{Username: username, PasswordHash: hash, Role: model.RoleAdmin}
					if err := a.Store.CreateUser(ctx, admin); err != nil {
						return err
					}
					a.Log.Info("admin created", zap.String("username", username))
				}
				if admin.Role != model.RoleAdmin {
					return fmt.Errorf("%s exists but is not an admin", username)
				}

				if usersFile == "" {
					return nil
				}
				f, err := os.Open(usersFile)
				if err != nil {
					return err
				}
				defer f.Close()

				records, err := utils.ParseCSVRecords(f)
				if err != nil {
					return fmt.Errorf("parse %s: %w", usersFile, err)
				}
				res, err := service.NewDirectoryService(a.Store, a.Options()).
					ImportUsers(ctx, &session.Session{User: *admin}, records)
				if err != nil {
					return err
				}
				for name, reason := range res.Failed {
					a.Log.Warn("user not imported", zap.String("user", name), zap.String("reason", reason))
				}
				a.Log.Info("users imported", zap.Int("created", len(res.Created)), zap.Int("failed", len(res.Failed)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password, only used when the admin is created")
	cmd.Flags().StringVar(&usersFile, "users", "", "CSV with username,password,full_name,email,role,manager columns")
	return cmd
}
