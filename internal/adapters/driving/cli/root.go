// Package cli implements the dossier command line with cobra.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/services"
	"github.com/custodia-labs/dossier/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose   bool
	configDir string
	envFile   string
)

var (
	configStore *file.ConfigStore
	settings    domain.Settings
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Ask questions about the declassified JFK files",
	Long: `dossier ingests the amasad/jfk_files markdown corpus into a vector store
and answers questions from it with retrieval-augmented generation.

Configuration is read from ~/.dossier/config.toml, a .env file in the
working directory and the environment, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.dossier)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the environment file, the config store and the settings.
// Services are built later, only by commands that need them.
func setup(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = store

	s, err := services.LoadSettings(store, os.Getenv)
	if err != nil {
		// config subcommands must still run so a bad value can be corrected.
		if !isConfigCommand(cmd) {
			return fmt.Errorf("load settings: %w", err)
		}
		logger.Warn("load settings: %v", err)
	}
	if verbose {
		s.Verbose = true
	}
	settings = s
	logger.SetVerbose(s.Verbose)
	services.LogDiagnostics(s)

	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	dir, err := file.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return dir, nil
}

func promptDir() (string, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompts"), nil
}
