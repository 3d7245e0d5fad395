package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
	redisURL   string
)

var rootCmd = &cobra.Command{
	Use:   "accessctl",
	Short: "Loop video access control service",
	Long:  `Accessctl manages per-video access policies and serves the policy API used by the Loop webapp and playback verification.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis connection URL for the playback cache")
}

func Execute() error {
	return rootCmd.Execute()
}
