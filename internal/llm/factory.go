package llm

import (
	"errors"
	"fmt"
	"os"

	"github.com/ziadkadry99/docchat/internal/config"
)

// ErrNotConfigured is returned when a provider's credentials are missing.
var ErrNotConfigured = errors.New("llm: provider not configured")

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "google", "openai", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "google":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if !config.CredentialSet(apiKey) {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable is not set", ErrNotConfigured)
		}
		return NewGoogleProvider(apiKey, model, os.Getenv("GEMINI_BASE_URL")), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if !config.CredentialSet(apiKey) {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY environment variable is not set", ErrNotConfigured)
		}
		return NewOpenAIProvider(apiKey, model, os.Getenv("OPENAI_BASE_URL")), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
