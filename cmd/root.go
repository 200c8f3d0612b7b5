package cmd

import (
	"fmt"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "foodgram",
	Short: "Recipe sharing backend",
	Long: `Foodgram serves a recipe sharing API: recipes with ingredients and tags,
favorites, a shopping cart with a downloadable shopping list, and author subscriptions.

Settings are read from the environment (DATABASE_DSN, JWT_SECRET, RABBITMQ_URL, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (json, console)")
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("LOG_FORMAT", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loadDataCmd)
}
