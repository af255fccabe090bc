package config

// DefaultChunkSize is the fragment length used when none is configured.
const DefaultChunkSize = 1000

// ProviderPreset describes the default models for a provider.
type ProviderPreset struct {
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int
}

var providerPresets = map[ProviderType]ProviderPreset{
	ProviderGoogle: {Model: "gemini-1.5-flash", EmbeddingModel: "gemini-embedding-001", EmbeddingDimensions: 3072},
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small", EmbeddingDimensions: 1536},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text", EmbeddingDimensions: 768},
	ProviderLocal:  {EmbeddingModel: "hash", EmbeddingDimensions: 384},
}

// DefaultExcludes are glob patterns skipped when importing a directory.
var DefaultExcludes = []string{
	".git/**",
	"**/.docchat/**",
	"**/~$*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-1.5-flash",
		EmbeddingProvider: ProviderLocal,
		DataDir:           ".docchat",
		ChunkSize:         DefaultChunkSize,
		TopK:              5,
		HistoryLimit:      10,
		Language:          "Vietnamese",
		Temperature:       0.4,
		MaxTokens:         2048,
		Include:           []string{"**/*.pdf"},
		Exclude:           DefaultExcludes,
		Search: SearchConfig{
			Enabled:    true,
			MaxResults: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// GetPreset returns the preset for the given provider, falling back to the
// Google preset for unknown providers.
func GetPreset(provider ProviderType) ProviderPreset {
	if p, ok := providerPresets[provider]; ok {
		return p
	}
	return providerPresets[ProviderGoogle]
}
