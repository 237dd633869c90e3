package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"airquality-server/internal/config"
	"airquality-server/internal/db"
	"airquality-server/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema and seed migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(conn)

			n, err := migrate.Run(cmd.Context(), conn)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", n)
			return nil
		},
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, cfg, slog.Default(), nil)
}

func closeDB(conn *sql.DB) {
	if err := db.Close(conn); err != nil {
		slog.Error("db close", "err", err)
	}
}
