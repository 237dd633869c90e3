package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"airquality-server/internal/config"
	"airquality-server/internal/logging"
)

const appName = "airquality-tools"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           appName,
		Short:         "Maintenance commands for the air quality dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			slog.SetDefault(logging.New(cfg, version, appName))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(newMigrateCmd(), newImportCmd(), newSummaryCmd())
	return root
}
