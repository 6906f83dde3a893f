package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greyfable/masterlist/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/masterlist/config.yaml", "Path to configuration file")
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  TLS enabled: %v\n", cfg.Server.TLS.Enabled)
	fmt.Printf("  Database path: %s\n", cfg.Database.Path)
	fmt.Printf("  Activity log path: %s\n", cfg.Activity.Path)
	fmt.Printf("  Session TTL: %s\n", cfg.Auth.SessionTTL)
	fmt.Printf("  Logging: %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)

	return nil
}
