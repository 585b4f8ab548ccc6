package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/essyessentials/storefront-backend/pkg/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateCreateDir string

func init() {
	for _, command := range []string{"up", "down", "status"} {
		migrateCmd.AddCommand(gooseCommand(command))
	}
	migrateCmd.AddCommand(migrateVersionCmd, migrateCreateCmd, migrateValidateCmd)
	migrateCreateCmd.Flags().StringVar(&migrateCreateDir, "dir", migrate.DefaultDir, "directory the migration is written to")
}

func gooseCommand(command string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: fmt.Sprintf("Run goose %s with the embedded migrations", command),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := boot(ctx, "migrate")
			if err != nil {
				return err
			}
			defer e.close()

			sqlDB, err := e.db.SQL()
			if err != nil {
				return fmt.Errorf("extracting sql.DB: %w", err)
			}
			e.logg.Info(e.logg.WithField(ctx, "cmd", command), "migrate.start")
			return migrate.Run(ctx, sqlDB, migrate.Embedded(), command)
		},
	}
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version <YYYYMMDDHHMMSS>",
	Short: "Migrate up or down to an exact version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := boot(ctx, "migrate")
		if err != nil {
			return err
		}
		defer e.close()

		sqlDB, err := e.db.SQL()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		return migrate.MigrateToVersion(ctx, sqlDB, migrate.Embedded(), args[0])
	},
}

var migrateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Write an empty SQL migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := migrate.CreateSQLMigration(migrateCreateDir, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
		return nil
	},
}

var migrateValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check migration names and goose markers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := migrate.Embedded()
		if len(args) == 1 {
			fsys = os.DirFS(args[0])
		}
		if err := migrate.Validate(fsys); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
		return nil
	},
}
