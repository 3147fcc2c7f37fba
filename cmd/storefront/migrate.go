package main

import (
	"fmt"
	"log/slog"

	"github.com/nikolayk812/pixshop/internal/db"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := setup()
			if err != nil {
				return err
			}

			pool, err := openPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("db.Migrate: %w", err)
			}

			slog.Info("schema migrated")
			return nil
		},
	}
}
