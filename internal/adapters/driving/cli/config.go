package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings stored in ~/.dossier/config.toml.
Environment variables and .env values override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the config file",
	Long: `Store a setting in the config file. Keys use dot notation, for example:

  dossier config set ai.provider openai
  dossier config set search.threshold 0.6
  dossier config set server.cors_origins http://localhost:3000,https://example.app`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <openai|mistral>",
	Short: "Store a provider API key",
	Long: `Prompt for a provider API key and store it in the config file.
The key is read without echo when stdin is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

// secretReader reads a secret from stdin. Tests replace it.
var secretReader = readPassword

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s := settings

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[AI]")
	cmd.Printf("  Provider: %s\n", s.AI.Provider.Description())
	if s.ProviderFellBack {
		cmd.Println("  (configured provider not recognised, using default)")
	}
	cmd.Printf("  Embedding model: %s\n", s.AI.EmbeddingModel)
	cmd.Printf("  Chat model: %s\n", s.AI.ChatModel)
	if s.AI.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.AI.BaseURL)
	}
	if s.AI.Provider.RequiresAPIKey() {
		if s.AI.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(s.AI.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !s.AI.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Embedding dimensions: %d\n", s.Embedding.Dimensions)
	cmd.Printf("  Similarity threshold: %.2f\n", s.Search.Threshold)
	cmd.Printf("  Top K: %d\n", s.Search.TopK)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", s.Chunking.Size, s.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Driver: %s\n", s.Storage.Driver)
	if s.Storage.Driver == domain.StoragePostgres {
		cmd.Printf("  Database URL: %s\n", setOrNot(s.Storage.DatabaseURL))
	} else if s.Storage.DataDir != "" {
		cmd.Printf("  Data directory: %s\n", s.Storage.DataDir)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Port: %d\n", s.Server.Port)
	cmd.Printf("  CORS origins: %s\n", strings.Join(s.Server.CORSOrigins, ", "))
	cmd.Println()

	cmd.Println("[Corpus]")
	if s.Corpus.Dir != "" {
		cmd.Printf("  Directory: %s\n", s.Corpus.Dir)
	} else {
		cmd.Printf("  Repository: %s/%s@%s\n", s.Corpus.Owner, s.Corpus.Repo, s.Corpus.Branch)
		cmd.Printf("  GitHub token: %s\n", setOrNot(s.Corpus.GitHubToken))
	}

	if configStore != nil {
		cmd.Println()
		cmd.Printf("Config file: %s\n", configStore.Path())
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not available")
	}
	key := args[0]
	value, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	if _, err := services.LoadSettings(configStore, os.Getenv); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	cmd.Printf("Set %s in %s\n", key, configStore.Path())
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not available")
	}

	var key string
	switch domain.AIProvider(strings.ToLower(args[0])) {
	case domain.AIProviderOpenAI:
		key = services.KeyOpenAIAPIKey
	case domain.AIProviderMistral:
		key = services.KeyMistralAPIKey
	default:
		return fmt.Errorf("%q does not use an API key (expected openai or mistral)", args[0])
	}

	cmd.Printf("Enter %s API key: ", args[0])
	secret := strings.TrimSpace(secretReader(cmd.InOrStdin()))
	cmd.Println()
	if secret == "" {
		return errors.New("no key entered")
	}

	if err := configStore.Set(key, secret); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	cmd.Printf("Saved %s (%s)\n", key, maskAPIKey(secret))
	return nil
}

var (
	intKeys = map[string]bool{
		services.KeyEmbeddingDims:   true,
		services.KeySearchTopK:      true,
		services.KeyChunkingSize:    true,
		services.KeyChunkingOverlap: true,
		services.KeyStorageMaxConns: true,
		services.KeyServerPort:      true,
	}
	floatKeys = map[string]bool{
		services.KeySearchThreshold:  true,
		services.KeyAIRequestsPerSec: true,
	}
)

// parseValue converts a command-line value to the type the settings loader expects.
func parseValue(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case intKeys[key]:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &domain.ValidationError{Field: key, Message: fmt.Sprintf("not an integer: %q", raw)}
		}
		return i, nil
	case floatKeys[key]:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &domain.ValidationError{Field: key, Message: fmt.Sprintf("not a number: %q", raw)}
		}
		return f, nil
	case key == services.KeyServerCORSOrigins:
		var list []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		return list, nil
	default:
		return raw, nil
	}
}

// readPassword reads without echo when in is a terminal, otherwise one line.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setOrNot(v string) string {
	if v == "" {
		return "(not set)"
	}
	return "(set)"
}
