// Package cli implements the lantern commands.
package cli

import (
	gocontext "context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/config"
)

// Global flags shared by every command.
var (
	globalConfigPath string
	globalLogLevel   string
	globalLogFile    string
)

// AddGlobalFlags registers the persistent flags on the root command.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&globalConfigPath, "config", "c", "", "Config file (.json, .yaml); defaults to .lantern/config.json if present")
	root.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&globalLogFile, "log-file", "", "Log file (default {output}/lantern.log)")
}

// NewContext returns the base context for a command.
func NewContext() gocontext.Context {
	return gocontext.Background()
}

// loadConfig reads --config, then .lantern/config.json in the working
// directory, falling back to the defaults.
func loadConfig() (*config.Config, error) {
	if globalConfigPath != "" {
		return config.LoadConfigFile(globalConfigPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
