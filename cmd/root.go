package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/similr/similr/internal/config"
	"github.com/similr/similr/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "similr",
	Short: "Answer rapid-fire questions and find out who you're similar to",
	Long:  "Similr is a terminal client for the Similr personality service: pick between option pairs, answer profile questions and unlock your report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SIMILR_DB env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this .env file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveMockCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment, plus --env-file when given.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		return config.Load(p)
	}
	return config.Load()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SIMILR_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
