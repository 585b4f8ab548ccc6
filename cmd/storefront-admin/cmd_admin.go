package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/essyessentials/storefront-backend/internal/auth"
	"github.com/essyessentials/storefront-backend/pkg/auth/session"
	"github.com/essyessentials/storefront-backend/pkg/redis"
)

const adminPasswordEnv = "STOREFRONT_ADMIN_PASSWORD"

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage back-office accounts",
}

var createAdminFlags struct {
	email    string
	name     string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := createAdminFlags.password
		if password == "" {
			password = os.Getenv(adminPasswordEnv)
		}
		if password == "" {
			return fmt.Errorf("--password or %s is required", adminPasswordEnv)
		}

		ctx := cmd.Context()
		e, err := boot(ctx, "storefront-admin")
		if err != nil {
			return err
		}
		defer e.close()

		redisClient, err := redis.New(ctx, e.cfg.Redis, e.logg)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()

		sessions, err := session.NewManager(redisClient, e.cfg.JWT)
		if err != nil {
			return err
		}
		svc, err := auth.NewService(auth.ServiceParams{
			Admins:         auth.NewRepository(e.db.DB()),
			SessionManager: sessions,
			JWTConfig:      e.cfg.JWT,
			PasswordConfig: e.cfg.Password,
			Logger:         e.logg,
		})
		if err != nil {
			return err
		}

		admin, err := svc.CreateAdmin(ctx, auth.CreateAdminInput{
			Email:    createAdminFlags.email,
			Password: password,
			Name:     createAdminFlags.name,
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(admin)
	},
}

func init() {
	adminCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&createAdminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&createAdminFlags.name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&createAdminFlags.password, "password", "", "password (defaults to $"+adminPasswordEnv+")")
	_ = createAdminCmd.MarkFlagRequired("email")
}
