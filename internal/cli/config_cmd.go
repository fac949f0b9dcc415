package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/updater"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// It writes the default config file and a .gitignore next to it that keeps
// cache rows and logs out of version control.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Example: `  # Create ~/.gitupdater/config.yaml
  gitupdater config init

  # Create configuration, overwriting existing
  gitupdater config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			return initConfig(cmd, config.ResolvePath(configFlag), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}

func initConfig(cmd *cobra.Command, configPath string, force bool) error {
	if !force {
		_, err := os.Stat(configPath)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", configPath, err)
		}
	}

	if err := config.New().Save(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Create .gitignore (never overwrites existing)
	created, err := config.EnsureGitignore(filepath.Dir(configPath))
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to keep cache data out of version control\n")
	}
	return nil
}

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the resolved configuration: the config file, the overlay and
environment overrides. Checks the cache lifetime and backend, that every
repository has a unique slug and that version constraints parse.`,
		Example: `  # Validate current configuration
  gitupdater config validate

  # Validate and show detailed information
  gitupdater config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := updater.CheckConstraints(cfg.Repos); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			cmd.Println("Configuration is valid")
			if verbose {
				printVerboseDetails(cmd, cfg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", orDash(cfg.Path()))
	cmd.Printf("  Cache enabled: %t\n", cfg.Cache.Enabled)
	cmd.Printf("  Cache backend: %s\n", cfg.StoreConfig().Backend)
	cmd.Printf("  Cache hours: %d\n", cfg.Cache.Hours)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", orDash(cfg.Logging.File))

	if len(cfg.Repos) == 0 {
		cmd.Println("  No repositories configured")
		return
	}
	cmd.Printf("  Repositories: %d (%d plugins, %d themes)\n",
		len(cfg.Repos), len(cfg.Plugins()), len(cfg.Themes()))
	for _, r := range cfg.Repos {
		if r.VersionConstraint != "" {
			cmd.Printf("    - %s (%s, %s, %s)\n", r.Slug, r.Type, r.Git, r.VersionConstraint)
			continue
		}
		cmd.Printf("    - %s (%s, %s)\n", r.Slug, r.Type, r.Git)
	}
}
