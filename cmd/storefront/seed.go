package main

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/pixshop/internal/repository"
	"github.com/nikolayk812/pixshop/internal/seed"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the active catalog with the launch menu",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
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

			tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
			if err != nil {
				return fmt.Errorf("pool.BeginTx: %w", err)
			}
			defer func() {
				if err != nil {
					if rbErr := tx.Rollback(ctx); rbErr != nil {
						slog.Error("tx.Rollback", "error", rbErr)
					}
				}
			}()

			p, err := seed.NewPipeline(repository.NewCatalogWithTx(tx))
			if err != nil {
				return fmt.Errorf("seed.NewPipeline: %w", err)
			}

			if err = p.Run(ctx); err != nil {
				return fmt.Errorf("p.Run: %w", err)
			}

			if err = tx.Commit(ctx); err != nil {
				return fmt.Errorf("tx.Commit: %w", err)
			}

			slog.Info("catalog seeded", "products", p.Result(seed.UpsertedKey))
			return nil
		},
	}
}
