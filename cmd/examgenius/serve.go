package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/examgenius-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, cfg, err := app.Bootstrap()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	a.Start()
	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	a.Log.Info("Server stopped")
	return nil
}
