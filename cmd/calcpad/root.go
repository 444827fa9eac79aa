package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/calcpad/internal/cli"
	"github.com/aretw0/calcpad/internal/config"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "calcpad",
	Short: "calcpad is a calculator with a persistent history",
	Long: `calcpad is a four-function calculator (plus modulo) that keeps the last
calculations in a persistent history. It runs in the terminal, headless,
as an HTTP service, or as an MCP tool server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("store", "", "History store driver: memory, file, redis, sqlite")
	flags.String("store-path", "", "Directory (file) or database path (sqlite) of the store")
}

// loadConfig reads the config file and environment, then applies the
// persistent flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Driver, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("store-path") {
		cfg.Store.Path, _ = cmd.Flags().GetString("store-path")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// openEnv loads the configuration and opens the store.
func openEnv(cmd *cobra.Command, opts ...cli.EnvOption) (*cli.Env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return cli.Open(cfg, append([]cli.EnvOption{cli.WithLogger(logger)}, opts...)...)
}
