package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderGoogle, cfg.Provider)
	assert.Equal(t, ProviderLocal, cfg.EmbeddingProvider)
	assert.Empty(t, cfg.EmbeddingModel, "embedding model follows the provider preset")
	assert.Zero(t, cfg.EmbeddingDimensions, "embedding dimensions follow the provider preset")
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docchat.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.ChunkSize = 500
	original.Language = "English"
	original.Include = []string{"**/*.pdf", "**/*.txt"}
	original.Log.Level = "debug"

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Provider, loaded.Provider)
	assert.Equal(t, original.Model, loaded.Model)
	assert.Equal(t, original.ChunkSize, loaded.ChunkSize)
	assert.Equal(t, original.Language, loaded.Language)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, original.Include, loaded.Include)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	require.NoError(t, err, "a missing file yields defaults")
	assert.Equal(t, ProviderGoogle, cfg.Provider)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("DOCCHAT_PROVIDER", "ollama")
	t.Setenv("DOCCHAT_CHUNK_SIZE", "750")
	t.Setenv("DOCCHAT_LOG__LEVEL", "warn")
	t.Setenv("DOCCHAT_EMBEDDING_PROVIDER", "ollama")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, loaded.Provider)
	assert.Equal(t, 750, loaded.ChunkSize)
	assert.Equal(t, "warn", loaded.Log.Level)
	assert.Equal(t, ProviderOllama, loaded.EmbeddingProvider)
	assert.Zero(t, loaded.EmbeddingDimensions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty provider", func(c *Config) { c.Provider = "" }, true},
		{"local is not a generator", func(c *Config) { c.Provider = ProviderLocal }, true},
		{"unknown provider", func(c *Config) { c.Provider = "invalid" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"unknown embedder", func(c *Config) { c.EmbeddingProvider = "tfidf" }, true},
		{"negative dimensions", func(c *Config) { c.EmbeddingDimensions = -1 }, true},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, true},
		{"negative history", func(c *Config) { c.HistoryLimit = -1 }, true},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	assert.Equal(t, "text-embedding-3-small", GetPreset(ProviderOpenAI).EmbeddingModel)
	assert.Equal(t, 384, GetPreset(ProviderLocal).EmbeddingDimensions)
	assert.Equal(t, 768, GetPreset(ProviderOllama).EmbeddingDimensions)
	assert.Equal(t, "gemini-1.5-flash", GetPreset("unknown").Model, "unknown providers fall back to google")
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderGoogle, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
		{ProviderLocal, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, APIKeyEnvVar(tt.provider), "provider %s", tt.provider)
	}
}

func TestCredentialSet(t *testing.T) {
	assert.True(t, CredentialSet("AIza-real-key"))
	assert.False(t, CredentialSet(""))
	assert.False(t, CredentialSet("   "))
	assert.False(t, CredentialSet("your_google_api_key"))
	assert.False(t, CredentialSet("YOUR_CSE_ID"))
}
