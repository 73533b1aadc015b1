package commands

import (
	"fmt"
	"os"

	"connectly/config"
	"connectly/intializers"

	"github.com/spf13/cobra"
)

var (
	configFile string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "connectly",
		Short:         "Connectly social network API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $"+config.FileEnv+")")
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(befriendCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads .env, then the layered config, and validates it.
func loadConfig() (*config.Config, error) {
	intializers.LoadEnvVariables()
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
