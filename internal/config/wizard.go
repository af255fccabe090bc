package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docchat! Let's configure your document assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select answer generation provider",
		Items: []string{"google", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = GetPreset(cfg.Provider).Model

	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"local  - offline feature hashing, no API key",
			"google - gemini-embedding-001",
			"openai - text-embedding-3-small",
			"ollama - nomic-embed-text",
		},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	embedders := []ProviderType{ProviderLocal, ProviderGoogle, ProviderOpenAI, ProviderOllama}
	cfg.EmbeddingProvider = embedders[embedIdx]
	preset := GetPreset(cfg.EmbeddingProvider)
	cfg.EmbeddingModel = preset.EmbeddingModel
	cfg.EmbeddingDimensions = preset.EmbeddingDimensions

	chunkPrompt := promptui.Prompt{
		Label:    "Fragment size in characters",
		Default:  strconv.Itoa(DefaultChunkSize),
		Validate: validatePositiveInt,
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.ChunkSize, _ = strconv.Atoi(strings.TrimSpace(chunkStr))

	langPrompt := promptui.Prompt{
		Label:   "Answer language",
		Default: cfg.Language,
	}
	lang, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language: %w", err)
	}
	cfg.Language = strings.TrimSpace(lang)

	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	for _, p := range []ProviderType{cfg.Provider, cfg.EmbeddingProvider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: set %s in your environment or .env file.\n", envVar)
		}
	}
	if os.Getenv("GOOGLE_API_KEY") == "" || os.Getenv("GOOGLE_CSE_ID") == "" {
		fmt.Println("Note: web search stays disabled until GOOGLE_API_KEY and GOOGLE_CSE_ID are set.")
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}
