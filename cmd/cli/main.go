package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RidhwanDev/uptime/pkg/adapters/repository/sqlite"
	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/services"
	"github.com/RidhwanDev/uptime/pkg/logging"
)

var (
	cfg *config.Config

	flagPretty bool
)

var rootCmd = &cobra.Command{
	Use:           "uptime",
	Short:         "Posting streaks and insights for TikTok creators",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logging.Init(cfg.LogLevel, true)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", true, "Indent JSON output")
	rootCmd.AddCommand(statsCmd, loginCmd, importCmd, exportCmd, resyncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openRepo() (*sqlite.SQLiteRepository, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return repo, nil
}

func newSyncService(repo *sqlite.SQLiteRepository) *services.SyncService {
	return services.NewSyncService(repo, tiktok.NewClient(cfg.TikTokAPIBaseURL, nil), services.SettingsFromConfig(cfg))
}
