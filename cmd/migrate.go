package cmd

import (
	"fmt"
	"log"

	"github.com/krishkalaria12/foodies/config"
	"github.com/krishkalaria12/foodies/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the meals table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, cfg.DBLogLevel)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Migration complete")
		return nil
	},
}
