// Package cmd contains the maison CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/bootstrap"
	"github.com/maisondecor/maison/internal/config"
	"github.com/maisondecor/maison/internal/log"
)

var (
	flagConfig    string
	flagAPIURL    string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "maison",
	Short: "Terminal storefront for the Maison Décor furniture store",
	Long: `maison is the terminal client for the Maison Décor furniture store.

Visitors browse the catalog, read the store pages, and reach the team
through the contact form. Administrators log in to manage listings on
the dashboard; their session is restored and silently refreshed on
every start, so a valid login survives between invocations.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context, so Ctrl+C
// cancels in-flight requests.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.maison/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend base URL (overrides config file and MAISON_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (text, json)")
}

// loadConfig builds the effective configuration: defaults, config
// file, environment, then command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)
	return logger
}

// newApp wires the session store and API clients from the effective
// configuration. Callers that need the persisted session restored run
// app.Run afterwards.
func newApp() (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, newLogger(cfg))
}
