package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maisondecor/maison/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the client configuration",
	Long: `Inspect the client configuration.

Subcommands:
  show  Print the effective configuration
  path  Print the config file location

Examples:
  maison config show
  maison config path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after defaults, the config file,
environment variables, and flags have been applied.

Examples:
  maison config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Long: `Print the path of the config file in use.

Examples:
  maison config path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig != "" {
			fmt.Println(flagConfig)
			return nil
		}
		fmt.Println(config.DefaultPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}
