// Package chat answers user questions end to end: retrieve context, load
// recent history, synthesize and record the turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/answer"
	"github.com/ziadkadry99/docchat/internal/history"
	"github.com/ziadkadry99/docchat/internal/logging"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("chat: question is empty")

// ContextBuilder produces the document context for a question.
type ContextBuilder interface {
	BuildContext(ctx context.Context, question string, topK int) (string, error)
}

// Answerer generates the reply.
type Answerer interface {
	Answer(ctx context.Context, question, docContext string, history []answer.Exchange) string
}

// HistoryStore reads and records conversation turns.
type HistoryStore interface {
	Recent(ctx context.Context, userID string, limit int) ([]history.Turn, error)
	Append(ctx context.Context, t history.Turn) (*history.Turn, error)
}

// Service wires retrieval, synthesis and history together.
type Service struct {
	contexts     ContextBuilder
	answerer     Answerer
	history      HistoryStore
	topK         int
	historyLimit int
	logger       *zap.Logger
}

// NewService creates a chat Service.
func NewService(contexts ContextBuilder, answerer Answerer, hist HistoryStore, topK, historyLimit int, logger *zap.Logger) *Service {
	return &Service{
		contexts:     contexts,
		answerer:     answerer,
		history:      hist,
		topK:         topK,
		historyLimit: historyLimit,
		logger:       logging.OrNop(logger),
	}
}

// Ask answers question for userID and records the turn. Retrieval and
// history failures degrade the answer instead of failing it; only a failure
// to record the turn is returned.
func (s *Service) Ask(ctx context.Context, userID, question string) (*history.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if userID == "" {
		userID = history.DefaultUser
	}
	log := s.logger.With(zap.String("user_id", userID))
	start := time.Now()

	docContext, err := s.contexts.BuildContext(ctx, question, s.topK)
	if err != nil {
		log.Warn("context retrieval failed, answering without documents", zap.Error(err))
		docContext = ""
	}

	var exchanges []answer.Exchange
	recent, err := s.history.Recent(ctx, userID, s.historyLimit)
	if err != nil {
		log.Warn("loading conversation history failed", zap.Error(err))
	}
	for _, t := range recent {
		exchanges = append(exchanges, answer.Exchange{Question: t.Question, Answer: t.Answer})
	}

	reply := s.answerer.Answer(ctx, question, docContext, exchanges)

	turn, err := s.history.Append(ctx, history.Turn{
		UserID:   userID,
		Question: question,
		Answer:   reply,
		Context:  docContext,
	})
	if err != nil {
		return nil, fmt.Errorf("recording turn: %w", err)
	}

	log.Info("question answered",
		zap.Bool("grounded", docContext != ""),
		zap.Int("history_turns", len(exchanges)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return turn, nil
}
