package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/daybook/internal/infrastructure/providers"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := providers.NewDatabase(conf.Server)
		if err != nil {
			return errors.Wrap(err, "failed to connect database")
		}

		if err := providers.MigrateDatabase(db); err != nil {
			return errors.Wrap(err, "failed to migrate database")
		}

		slog.Info("migration completed", slog.String("module", "main"))
		return nil
	},
}
