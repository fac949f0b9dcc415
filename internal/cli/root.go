package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the gitupdater CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
// Configuration is resolved as flags over environment over config file over defaults.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:          "gitupdater",
		Short:        "Update plugins and themes from git hosts",
		Long:         "gitupdater: cache repository metadata, parse file headers and decide which installs can update",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Negative values would produce rows that are already expired.
			cacheHours, _ := cmd.Flags().GetInt("cache-hours")
			if cacheHours < 0 {
				return fmt.Errorf("cache-hours must be >= 0, got %d", cacheHours)
			}

			cfg, err := loadConfig(cmd, lookupEnv)
			if err != nil {
				return err
			}
			if cacheHours > 0 {
				cfg.Cache.Hours = cacheHours
			}

			result := setupLogging(cmd, cfg)
			logResult = &result
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default $GITUPDATER_CONFIG or ~/.gitupdater/config.yaml)")
	cmd.PersistentFlags().String("overlay", "", "YAML file whose top-level sections replace those of the config file")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().
		Int("cache-hours", 0, "cache row lifetime in hours (0 = use config default, overrides config file and env var)")

	cmd.AddCommand(
		newCacheCmd(), newHeaderCmd(), newURICmd(), newSlugCmd(),
		newUpdateCmd(), newCronCmd(), NewMoveCmd(), newSettingsCmd(),
		NewServersCmd(), NewHooksCmd(), newConfigCmd(),
	)

	return cmd
}

// loadConfig reads the config file, applies the overlay and the environment.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	configFlag, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.ResolvePath(configFlag))
	if err != nil {
		return nil, err
	}

	if overlay, _ := cmd.Flags().GetString("overlay"); overlay != "" {
		if err = config.ShallowMergeYAML(cfg, overlay); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(lookupEnv)
	return cfg, nil
}

const rootCmdExample = `  # Parse the header of a plugin main file
  gitupdater header parse --kind plugin my-plugin/my-plugin.php

  # Show which configured repositories can update
  gitupdater update check

  # Inspect and clear the repo cache
  gitupdater cache status
  gitupdater cache purge

  # Resolve an installed directory name to its configured slug
  gitupdater slug resolve my-plugin-develop

  # Initialize configuration
  gitupdater config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
