package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ziadkadry99/docchat/internal/answer"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/history"
)

type stubContexts struct {
	text string
	err  error
	topK int
}

func (s *stubContexts) BuildContext(ctx context.Context, question string, topK int) (string, error) {
	s.topK = topK
	return s.text, s.err
}

type recordingAnswerer struct {
	context string
	history []answer.Exchange
}

func (r *recordingAnswerer) Answer(ctx context.Context, question, docContext string, h []answer.Exchange) string {
	r.context = docContext
	r.history = h
	return "answer to " + question
}

func newHistory(t *testing.T) *history.Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return history.NewStore(d)
}

func TestAskRecordsTurnAndFeedsHistory(t *testing.T) {
	ctx := context.Background()
	hist := newHistory(t)
	contexts := &stubContexts{text: "refunds within 30 days"}
	ans := &recordingAnswerer{}
	svc := NewService(contexts, ans, hist, 5, 2, nil)

	for _, q := range []string{"first", "second", "third"} {
		_, err := svc.Ask(ctx, "alice", q)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, contexts.topK)
	assert.Equal(t, "refunds within 30 days", ans.context)
	require.Len(t, ans.history, 2)
	assert.Equal(t, "first", ans.history[0].Question)
	assert.Equal(t, "answer to second", ans.history[1].Answer)

	turn, err := svc.Ask(ctx, "alice", "  fourth  ")
	require.NoError(t, err)
	assert.Equal(t, "fourth", turn.Question)
	assert.Equal(t, "refunds within 30 days", turn.Context)

	all, err := hist.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAskDegradesOnRetrievalError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ans := &recordingAnswerer{context: "unset"}
	svc := NewService(&stubContexts{text: "ignored", err: errors.New("embedder down")}, ans, newHistory(t), 5, 10, zap.New(core))

	turn, err := svc.Ask(context.Background(), "", "question")
	require.NoError(t, err)
	assert.Equal(t, "", ans.context)
	assert.Equal(t, history.DefaultUser, turn.UserID)
	assert.Equal(t, 1, logs.FilterMessage("context retrieval failed, answering without documents").Len())
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewService(&stubContexts{}, &recordingAnswerer{}, newHistory(t), 5, 10, nil)
	_, err := svc.Ask(context.Background(), "bob", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}
