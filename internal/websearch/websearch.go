// Package websearch supplies supplementary web results for answer synthesis.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ziadkadry99/docchat/internal/config"
	"github.com/ziadkadry99/docchat/internal/logging"
)

// Status tells whether a search ran.
type Status int

const (
	// StatusOK means the search ran; it may still have found nothing.
	StatusOK Status = iota
	// StatusUnavailable means search is unconfigured or the backend failed.
	StatusUnavailable
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "unavailable"
}

// Common search errors.
var (
	ErrNotConfigured = errors.New("websearch: not configured")
	ErrRateLimited   = errors.New("websearch: rate limit exceeded")
	ErrForbidden     = errors.New("websearch: forbidden (check API key and engine ID)")
)

// Result is one web hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Outcome is the result of a search attempt.
type Outcome struct {
	Results []Result
	Status  Status
	Err     error
}

// Items returns the results, or nil when search was unavailable.
func (o Outcome) Items() []Result {
	if o.Status != StatusOK {
		return nil
	}
	return o.Results
}

// Searcher performs web searches. Implementations never return errors
// directly; failures are reported through Outcome.
type Searcher interface {
	Search(ctx context.Context, query string) Outcome
}

// Disabled is a Searcher that is always unavailable.
type Disabled struct {
	Reason error
}

// Search implements Searcher.
func (d Disabled) Search(context.Context, string) Outcome {
	reason := d.Reason
	if reason == nil {
		reason = ErrNotConfigured
	}
	return Outcome{Status: StatusUnavailable, Err: reason}
}

// GoogleSearcher queries the Google Custom Search JSON API.
type GoogleSearcher struct {
	svc        *customsearch.Service
	engineID   string
	maxResults int
	logger     *zap.Logger
}

// NewGoogleSearcher creates a searcher for the given API key and search
// engine ID. maxResults is clamped to the API's 1..10 range.
func NewGoogleSearcher(ctx context.Context, apiKey, engineID string, maxResults int, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if !config.CredentialSet(apiKey) || !config.CredentialSet(engineID) {
		return nil, ErrNotConfigured
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating custom search service: %w", err)
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 10 {
		maxResults = 10
	}
	return &GoogleSearcher{
		svc:        svc,
		engineID:   engineID,
		maxResults: maxResults,
		logger:     logging.OrNop(logger),
	}, nil
}

// Search implements Searcher.
func (g *GoogleSearcher) Search(ctx context.Context, query string) Outcome {
	resp, err := g.svc.Cse.List().
		Q(query).
		Cx(g.engineID).
		Num(int64(g.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		err = wrapError(err)
		g.logger.Warn("web search failed", zap.Error(err))
		return Outcome{Status: StatusUnavailable, Err: err}
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		results = append(results, Result{Title: item.Title, Snippet: item.Snippet, Link: item.Link})
	}
	return Outcome{Results: results, Status: StatusOK}
}

// FromEnv builds a searcher from GOOGLE_API_KEY and GOOGLE_CSE_ID. Missing
// or placeholder credentials yield a Disabled searcher.
func FromEnv(ctx context.Context, enabled bool, maxResults int, logger *zap.Logger) Searcher {
	if !enabled {
		return Disabled{}
	}
	s, err := NewGoogleSearcher(ctx, os.Getenv("GOOGLE_API_KEY"), os.Getenv("GOOGLE_CSE_ID"), maxResults, logger)
	if err != nil {
		logging.OrNop(logger).Info("web search disabled", zap.Error(err))
		return Disabled{Reason: err}
	}
	return s
}

func wrapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	default:
		return err
	}
}
