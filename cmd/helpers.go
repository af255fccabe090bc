package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/answer"
	"github.com/ziadkadry99/docchat/internal/chat"
	"github.com/ziadkadry99/docchat/internal/config"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/extract"
	"github.com/ziadkadry99/docchat/internal/history"
	"github.com/ziadkadry99/docchat/internal/ingest"
	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/logging"
	"github.com/ziadkadry99/docchat/internal/retrieval"
	"github.com/ziadkadry99/docchat/internal/websearch"
)

// app holds the components shared by commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *db.DB
	documents *documents.Store
	history   *history.Store
	embedder  embeddings.Embedder
}

// openApp loads config, sets up logging and opens the database.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        database,
		documents: documents.NewStore(database),
		history:   history.NewStore(database),
		embedder:  embedder,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}

func (a *app) pipeline() *ingest.Pipeline {
	return ingest.NewPipeline(extract.New(a.logger), a.embedder, a.documents, a.cfg.ChunkSize, a.logger)
}

func (a *app) assembler() *retrieval.Assembler {
	return retrieval.NewAssembler(a.documents, a.embedder, a.cfg.ChunkSize, a.logger)
}

// chatService wires retrieval, generation, web search and history.
func (a *app) chatService(ctx context.Context) *chat.Service {
	synth := answer.NewSynthesizer(
		a.provider(),
		websearch.FromEnv(ctx, a.cfg.Search.Enabled, a.cfg.Search.MaxResults, a.logger),
		answer.Options{
			Model:       a.cfg.Model,
			Language:    a.cfg.Language,
			MaxResults:  a.cfg.Search.MaxResults,
			Temperature: a.cfg.Temperature,
			MaxTokens:   a.cfg.MaxTokens,
		},
		a.logger,
	)
	return chat.NewService(a.assembler(), synth, a.history, a.cfg.TopK, a.cfg.HistoryLimit, a.logger)
}

// provider returns the configured generator, or nil when its credentials
// are missing so answers degrade to a failure message.
func (a *app) provider() llm.Provider {
	p, err := llm.NewProvider(string(a.cfg.Provider), a.cfg.Model)
	if errors.Is(err, llm.ErrNotConfigured) {
		a.logger.Warn("answer generation unavailable", zap.Error(err))
		return nil
	}
	if err != nil {
		a.logger.Error("creating LLM provider", zap.Error(err))
		return nil
	}
	return llm.NewRateLimitedProvider(p, a.cfg.RequestsPerMinute)
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = config.ProviderLocal
	}
	preset := config.GetPreset(provider)
	model := cfg.EmbeddingModel
	if model == "" {
		model = preset.EmbeddingModel
	}
	dims := cfg.EmbeddingDimensions
	if dims == 0 {
		dims = preset.EmbeddingDimensions
	}

	switch provider {
	case config.ProviderLocal:
		return embeddings.NewHashEmbedder(dims), nil
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if !config.CredentialSet(apiKey) {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for Google embeddings")
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(model), dims, os.Getenv("GEMINI_BASE_URL")), nil
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if !config.CredentialSet(apiKey) {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), dims, os.Getenv("OPENAI_BASE_URL")), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, dims, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docchat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}
