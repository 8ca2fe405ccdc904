package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Pre-render the site and serve it over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := spacetraveling.New(cfg, spacetraveling.WithLogger(logger))
		defer func() {
			if err := app.Close(); err != nil {
				logger.Error("close app", "error", err)
			}
		}()
		return app.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides ADDR)")
}
