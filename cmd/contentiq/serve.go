package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/palemoky/contentiq/internal/config"
	"github.com/palemoky/contentiq/internal/logger"
	"github.com/palemoky/contentiq/internal/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator page and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, cfg, logger.Default())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (defaults and environment only when empty)")
	return cmd
}
