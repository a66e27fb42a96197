package main

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/sabha-admin/internal/config"
	"github.com/iliyamo/sabha-admin/internal/database"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
		if err != nil {
			return err
		}
		defer db.Close()
		if migrateStatus {
			return database.MigrationStatus(cmd.Context(), db)
		}
		return database.Migrate(cmd.Context(), db)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print migration status instead of applying")
}
