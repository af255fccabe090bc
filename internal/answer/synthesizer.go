// Package answer turns retrieved context, conversation history and web
// results into a generated answer.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/logging"
	"github.com/ziadkadry99/docchat/internal/websearch"
)

// DefaultMaxResults is the number of web results interpolated into a prompt.
const DefaultMaxResults = 3

// Options tunes generation.
type Options struct {
	Model       string
	Language    string
	MaxResults  int
	Temperature float64
	MaxTokens   int
}

// Synthesizer produces answers. It never fails: a missing or failing
// generator yields a descriptive failure message instead.
type Synthesizer struct {
	provider llm.Provider
	searcher websearch.Searcher
	opts     Options
	logger   *zap.Logger
}

// NewSynthesizer creates a Synthesizer. provider may be nil when no
// generator is configured; searcher may be nil to skip web search.
func NewSynthesizer(provider llm.Provider, searcher websearch.Searcher, opts Options, logger *zap.Logger) *Synthesizer {
	if searcher == nil {
		searcher = websearch.Disabled{}
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Synthesizer{
		provider: provider,
		searcher: searcher,
		opts:     opts,
		logger:   logging.OrNop(logger),
	}
}

// Answer generates a reply to question. history is oldest first.
func (s *Synthesizer) Answer(ctx context.Context, question, docContext string, history []Exchange) string {
	if s.provider == nil {
		s.logger.Warn("answer requested without a configured generator")
		return failureMessage(llm.ErrNotConfigured)
	}

	outcome := s.searcher.Search(ctx, question)
	if outcome.Status != websearch.StatusOK {
		s.logger.Debug("web search unavailable", zap.Error(outcome.Err))
	}
	results := outcome.Items()
	if len(results) > s.opts.MaxResults {
		results = results[:s.opts.MaxResults]
	}

	prompt := BuildPrompt(question, docContext, history, results, s.opts.Language)
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.System},
			{Role: llm.RoleUser, Content: prompt.User},
		},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.logger.Error("answer generation failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return failureMessage(err)
	}

	s.logger.Debug("answer generated",
		zap.Bool("grounded", docContext != ""),
		zap.Int("web_results", len(results)),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)
	return resp.Content
}

func failureMessage(err error) string {
	return fmt.Sprintf("Sorry, I could not generate an answer: %v", err)
}
