package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the generation strategy, and
storage options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set a single setting without the wizard.

Keys:
  strategy     Generation strategy: heuristic, llm or hybrid
  embedding    Embedding provider: gemini, openai, ollama or hash
  generation   Generation provider: gemini, openai, ollama or heuristic

Provider keys accept --model to override the default model; cloud
providers prompt for an API key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

// settingsModel overrides the default model for 'settings set'.
var settingsModel string

func init() {
	settingsSetCmd.Flags().StringVarP(&settingsModel, "model", "m", "", "Model name (defaults to the provider default)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, settings)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Generation settings
	cmd.Println("[Generation]")
	cmd.Printf("  Strategy: %s\n", strategyDescription(settings.Generation.Strategy))
	cmd.Printf("  Provider: %s\n", settings.Generation.Provider.Description())
	if settings.Generation.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Generation.Model)
	}
	if settings.Generation.Provider.IsLocal() && settings.Generation.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Generation.BaseURL)
	}
	if settings.Generation.Provider.RequiresAPIKey() {
		if settings.Generation.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Generation.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status = "configured"
	if !settings.Generation.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Storage settings
	cmd.Println("[Storage]")
	cmd.Printf("  Examples backend: %s\n", settings.Storage.ExamplesBackend)
	if settings.Storage.DBPath != "" {
		cmd.Printf("  Database: %s\n", settings.Storage.DBPath)
	}
	if settings.Storage.CorpusDir != "" {
		cmd.Printf("  Corpus directory: %s\n", settings.Storage.CorpusDir)
	}
	if settings.Storage.TaxonomyPath != "" {
		cmd.Printf("  Taxonomy: %s\n", settings.Storage.TaxonomyPath)
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'orbit settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]

	switch key {
	case "strategy":
		strategy := domain.GenerationStrategy(value)
		if err := settingsService.SetStrategy(strategy); err != nil {
			return fmt.Errorf("failed to set strategy: %w", err)
		}
		cmd.Printf("Generation strategy set to: %s\n", strategyDescription(strategy))
		return nil

	case "embedding":
		provider := domain.AIProvider(value)
		apiKey, err := promptAPIKey(cmd, provider)
		if err != nil {
			return err
		}
		if err := settingsService.SetEmbeddingProvider(provider, settingsModel, apiKey); err != nil {
			return fmt.Errorf("failed to configure embedding provider: %w", err)
		}
		cmd.Printf("Embedding provider set to: %s\n", provider.Description())
		return nil

	case "generation":
		provider := domain.AIProvider(value)
		apiKey, err := promptAPIKey(cmd, provider)
		if err != nil {
			return err
		}
		if err := settingsService.SetGenerationProvider(provider, settingsModel, apiKey); err != nil {
			return fmt.Errorf("failed to configure generation provider: %w", err)
		}
		cmd.Printf("Generation provider set to: %s\n", provider.Description())
		return nil

	default:
		return fmt.Errorf("unknown setting %q (valid: strategy, embedding, generation)", key)
	}
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Orbit Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	// Step 1: Generation Strategy
	cmd.Println("Step 1: Select Generation Strategy")
	cmd.Println("----------------------------------")
	strategies := wizardStrategies()
	for i, strategy := range strategies {
		cmd.Printf("  %d. %s\n", i+1, strategyDescription(strategy))
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	strategyIdx := parseChoice(input, len(strategies), 1)
	selectedStrategy := strategies[strategyIdx-1]

	if err := settingsService.SetStrategy(selectedStrategy); err != nil {
		return fmt.Errorf("failed to set strategy: %w", err)
	}
	cmd.Printf("Set generation strategy to: %s\n\n", strategyDescription(selectedStrategy))

	// Step 2: Embedding Provider
	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Chunking, classification and retrieval all embed text. The hash")
	cmd.Println("embedder works offline with no setup.")
	cmd.Println()

	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 3: Generation Provider (if needed)
	if selectedStrategy == domain.StrategyHeuristic {
		cmd.Println("Step 3: Generation Provider (skipped)")
		cmd.Println("-------------------------------------")
		cmd.Println("Not required for the heuristic strategy.")
		cmd.Println()
	} else {
		cmd.Println("Step 3: Configure Generation Provider")
		cmd.Println("-------------------------------------")
		cmd.Println("Your strategy uses a generation provider to build graphs.")
		cmd.Println()

		if err := configureGenerationProvider(cmd, reader); err != nil {
			return err
		}
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

//nolint:dupl // Similar to configureGenerationProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for generation - intentional for CLI flow clarity
func configureGenerationProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Generation Provider")
	providers := domain.AllGenerationProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultGenerationModels()
	defaultModel := defaults[selectedProvider]
	if defaultModel != "" {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
	} else {
		cmd.Print("Enter model name []: ")
	}
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetGenerationProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure generation provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateGenerationConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("generation configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Generation provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// wizardStrategies lists strategies in wizard order, default first.
func wizardStrategies() []domain.GenerationStrategy {
	return []domain.GenerationStrategy{
		domain.StrategyHybrid,
		domain.StrategyLLM,
		domain.StrategyHeuristic,
	}
}

func strategyDescription(s domain.GenerationStrategy) string {
	switch s {
	case domain.StrategyHeuristic:
		return "Heuristic (offline rule-based extraction, deterministic)"
	case domain.StrategyLLM:
		return "LLM (always use the generation provider)"
	case domain.StrategyHybrid:
		return "Hybrid (generation provider with heuristic fallback)"
	default:
		return string(s)
	}
}

// promptAPIKey asks for an API key when the provider needs one.
func promptAPIKey(cmd *cobra.Command, provider domain.AIProvider) (string, error) {
	if !provider.RequiresAPIKey() {
		return "", nil
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
