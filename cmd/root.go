package cmd

import (
	"log"
	"os"
	"strings"

	"docuvault/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "docuvault",
	Short: "Multi-tenant JSON document store",
	Long:  "A multi-tenant JSON document store over HTTP, backed by a single relational table. Configuration comes from flags, DOCUVAULT_* environment variables, or a .env file.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("driver", "", "database driver: postgres or sqlite3 (default from env)")
	rootCmd.PersistentFlags().String("database-url", "", "connection string or sqlite file path (overrides env)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Duration("query-timeout", 0, "per-operation database timeout")
	rootCmd.PersistentFlags().Int("pool-size", 0, "maximum open database connections")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}
	viper.SetEnvPrefix("DOCUVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig layers flag/env overrides from viper on top of the plain
// environment defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg := config.FromEnv()
	if v := viper.GetString("driver"); v != "" {
		cfg.Driver = v
	}
	if v := viper.GetString("database-url"); v != "" {
		cfg.Target = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetDuration("query-timeout"); v > 0 {
		cfg.QueryTimeout = v
	}
	if v := viper.GetInt("pool-size"); v > 0 {
		cfg.PoolSize = v
	}
	if v := viper.GetString("endpoint"); v != "" {
		cfg.Addr = v
	}
	return cfg, nil
}
