// Package main implements the database migration utility for the wa-inbox service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/infrastructure/migrate"
	"github.com/popeskul/wa-inbox/internal/logger"
)

var (
	configPath     string
	databaseURL    string
	migrationsPath string

	runner *migrate.Runner
	log    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Manage the wa-inbox database schema",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		log, err = logger.New("info", "console")
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		// DATABASE_URL wins over the config file so the tool runs without one.
		url := databaseURL
		path := migrationsPath
		if url == "" {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			url = cfg.Database.GetURL()
			if path == "" {
				path = cfg.Database.MigrationsPath
			}
		}
		if path == "" {
			path = "./migrations"
		}

		runner = migrate.NewRunner(&migrate.Config{
			DatabaseURL:    url,
			MigrationsPath: path,
		}, log)
		return nil
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runner.Up()
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := cmd.Flags().GetInt("steps")
		if err != nil {
			return err
		}
		return runner.Down(steps)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		if dirty {
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty)\n", version)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres URL, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "path to the migrations directory")

	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
