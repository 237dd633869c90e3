package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"airquality-server/internal/migrate"
	"airquality-server/internal/modules/airquality/dataset"
	"airquality-server/internal/modules/airquality/repository"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored readings with the contents of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			began := time.Now()
			readings, err := dataset.LoadFile(args[0])
			if err != nil {
				return err
			}

			conn, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(conn)

			if _, err := migrate.Run(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			n, err := repository.NewRepository(conn).ReplaceReadings(cmd.Context(), readings)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			slog.Info("import finished", "file", args[0], "readings", n, "duration", time.Since(began))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d readings from %s\n", n, args[0])
			return nil
		},
	}
}
