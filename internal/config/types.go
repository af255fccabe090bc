package config

// ProviderType identifies a generation or embedding backend.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	// ProviderLocal is the offline feature-hashing embedder. It is only valid
	// as an embedding provider.
	ProviderLocal ProviderType = "local"
)

// Config is the top-level docchat configuration, corresponding to .docchat.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`

	// Empty EmbeddingModel and zero EmbeddingDimensions select the
	// embedding provider's preset.
	EmbeddingModel      string `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// ChunkSize is the fragment length L, in characters. Changing it after
	// documents were ingested is safe: every record keeps the size it was
	// built with.
	ChunkSize         int     `yaml:"chunk_size" koanf:"chunk_size"`
	TopK              int     `yaml:"top_k" koanf:"top_k"`
	HistoryLimit      int     `yaml:"history_limit" koanf:"history_limit"`
	Language          string  `yaml:"language" koanf:"language"`
	Temperature       float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens         int     `yaml:"max_tokens" koanf:"max_tokens"`
	RequestsPerMinute int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	Search SearchConfig `yaml:"search" koanf:"search"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
	Server ServerConfig `yaml:"server" koanf:"server"`
}

// SearchConfig controls the web search collaborator. Credentials are read
// from GOOGLE_API_KEY and GOOGLE_CSE_ID.
type SearchConfig struct {
	Enabled    bool `yaml:"enabled" koanf:"enabled"`
	MaxResults int  `yaml:"max_results" koanf:"max_results"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
	JSON  bool   `yaml:"json" koanf:"json"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
