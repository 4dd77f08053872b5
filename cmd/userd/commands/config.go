package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/veterinaryhq/userd/pkg/config"
)

var showOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage userd configuration files.

Use 'userd init' to create a new configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective userd configuration after applying file,
environment, and default values.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show effective config as YAML
  userd config show

  # Show as JSON
  userd config show --output json

  # Show specific config file
  userd config show --config /etc/userd/config.yaml`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the userd configuration file.

Checks that the file parses, that all required fields are present, and that
cross-field constraints hold (pool sizing, production TLS).`,
	RunE: runConfigValidate,
}

func init() {
	configShowCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	switch showOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown output format %q (expected yaml or json)", showOutput)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := config.MustLoad(GetConfigFile()); err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	return nil
}
