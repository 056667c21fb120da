package main

import (
	"fmt"

	"github.com/zakareajob-cpu/zak-crm/internal/repository"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/spf13/cobra"
)

func newSeedAdminCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin user if it does not exist",
		Long:  "Create the admin user from --email/--password, falling back to ADMIN_EMAIL and ADMIN_PASSWORD. An existing user is left untouched.",
	}
	cmd.Flags().StringVar(&email, "email", "", "admin e-mail (default ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default ADMIN_PASSWORD)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if email == "" {
			email = a.cfg.AdminEmail
		}
		if password == "" {
			password = a.cfg.AdminPassword
		}
		db, err := a.database()
		if err != nil {
			return err
		}
		auth := service.NewAuthService(repository.NewUserRepository(db), a.cfg)
		created, err := auth.EnsureAdmin(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created.\n", email)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists.\n", email)
		}
		return nil
	}
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
