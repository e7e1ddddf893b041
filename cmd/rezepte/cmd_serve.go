package main

import (
	"os"
	"os/signal"
	"syscall"

	"rezepte/internal/backend"
	"rezepte/internal/logging"

	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr, driver, dsn string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development recipe backend",
		Long: `Serves GET/POST /api/v1/rezepte and DELETE /api/v1/rezepte/{id} backed by
SQLite (default) or PostgreSQL. Stops gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Backend.Address = addr
			}
			if driver != "" {
				a.cfg.Backend.Driver = driver
			}
			if dsn != "" {
				a.cfg.Backend.DSN = dsn
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := backend.Open(ctx, a.cfg.Backend.Driver, a.cfg.Backend.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := backend.NewServer(store, logging.Get(logging.CategoryServer))
			return srv.Run(ctx, a.cfg.Backend.Address, a.cfg.GetShutdownTimeout(), nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN (SQLite file path or PostgreSQL URL)")
	return cmd
}
