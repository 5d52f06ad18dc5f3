/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"radassist/internal/bootstrap"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
)

// initDbCmd represents the init-db command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and seed the reference registry",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		seeded, err := svc.registry.Seed(ctx)
		if err != nil {
			logging.Error(ctx, "seed reference registry failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed reference registry")
		}

		logging.Info(ctx, "init-db finished",
			slog.String("database_dsn", app.Config.Database.DSN),
			slog.Int("seeded", seeded),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s (seeded %d references)\n", app.Config.Database.DSN, seeded); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
