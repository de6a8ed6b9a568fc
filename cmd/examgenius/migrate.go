package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/examgenius-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := app.Bootstrap()
		if err != nil {
			return err
		}
		// NewCore migrates as part of startup.
		a, err := app.NewCore(log, cfg)
		if err != nil {
			log.Sync()
			return fmt.Errorf("migrate: %w", err)
		}
		defer a.Close()
		a.Log.Info("Migrations applied")
		return nil
	},
}
