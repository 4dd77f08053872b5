package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veterinaryhq/userd/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample userd configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/userd/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  userd init

  # Initialize with custom path
  userd init --config /etc/userd/config.yaml

  # Force overwrite existing config
  userd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to set your database credentials")
	fmt.Println("  2. Apply the schema with: userd migrate")
	fmt.Println("  3. Start the server with: userd start")
	fmt.Println("\nSecurity note:")
	fmt.Println("  The config file carries the database password and is written with 0600")
	fmt.Println("  permissions. Prefer an environment variable in production:")
	fmt.Println("    export USERD_DATABASE_PASSWORD=...")

	return nil
}
