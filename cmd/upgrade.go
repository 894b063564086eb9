package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/upgrade"
	"github.com/dontknow492/Notes/pkg/logger"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the database schema to the latest version",
	Long: `Upgrade the database schema to the latest version.

This command creates missing tables and applies all pending migrations.
It is safe to run this command multiple times - already applied migrations will be skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		configPath = findConfig(configPath)
		if configPath == "" {
			fmt.Println("Config file not found")
			os.Exit(1)
		}

		appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Loading config from: %s\n", configRealpath)

		lg, err := logger.NewLogger(appConfig.GetLoggerConfig())
		if err != nil {
			fmt.Printf("Failed to init logger: %v\n", err)
			os.Exit(1)
		}

		db, err := dao.NewDBEngine(appConfig.GetDatabaseConfig(), lg)
		if err != nil {
			fmt.Printf("Failed to init database: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Starting database upgrade...")

		if err := upgrade.Execute(context.Background(), db, lg); err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database upgrade completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
}
