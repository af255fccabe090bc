package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/history"
	"github.com/ziadkadry99/docchat/internal/retrieval"
)

type mockAsker struct {
	userID string
	err    error
}

func (m *mockAsker) Ask(_ context.Context, userID, question string) (*history.Turn, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.userID = userID
	return &history.Turn{Question: question, Answer: "answer: " + question}, nil
}

type mockRetriever struct {
	hits []retrieval.Hit
	topK int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, topK int) ([]retrieval.Hit, error) {
	m.topK = topK
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

type mockLister struct {
	docs []documents.SourceDocument
}

func (m *mockLister) List(context.Context) ([]documents.SourceDocument, error) {
	return m.docs, nil
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"ask_documents", askDocumentsTool, "ask_documents"},
		{"search_documents", searchDocumentsTool, "search_documents"},
		{"list_documents", listDocumentsTool, "list_documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.tool.Name)
			assert.NotEmpty(t, tt.tool.Description)
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(&mockAsker{}, &mockRetriever{}, &mockLister{}, 0)
	require.NotNil(t, srv.mcp)
	assert.Equal(t, 5, srv.topK, "non-positive topK falls back to 5")
}

func TestHandleAskDocuments(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		asker := &mockAsker{}
		srv := NewServer(asker, &mockRetriever{}, &mockLister{}, 3)

		result := callTool(t, srv.handleAskDocuments, map[string]any{"question": "refunds?", "user_id": "alice"})
		require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
		assert.Equal(t, "answer: refunds?", resultText(t, result))
		assert.Equal(t, "alice", asker.userID)
	})

	t.Run("missing question", func(t *testing.T) {
		srv := NewServer(&mockAsker{}, &mockRetriever{}, &mockLister{}, 3)
		result := callTool(t, srv.handleAskDocuments, map[string]any{"question": "  "})
		assert.True(t, result.IsError)
	})

	t.Run("ask failure", func(t *testing.T) {
		srv := NewServer(&mockAsker{err: errors.New("db closed")}, &mockRetriever{}, &mockLister{}, 3)
		result := callTool(t, srv.handleAskDocuments, map[string]any{"question": "q"})
		assert.True(t, result.IsError)
	})
}

func TestHandleSearchDocuments(t *testing.T) {
	retriever := &mockRetriever{hits: []retrieval.Hit{
		{Position: 0, DocumentID: "d1", Fragment: "Refunds within 30 days.", Similarity: 0.91},
		{Position: 3, DocumentID: "d2", Fragment: "Shipping takes a week.", Similarity: 0.42},
	}}
	srv := NewServer(&mockAsker{}, retriever, &mockLister{}, 4)

	t.Run("default top_k", func(t *testing.T) {
		result := callTool(t, srv.handleSearchDocuments, map[string]any{"query": "refund"})
		assert.Equal(t, 4, retriever.topK)
		text := resultText(t, result)
		assert.Contains(t, text, "Found 2 fragment(s)")
		assert.Contains(t, text, "Similarity: 91.0%")
	})

	t.Run("explicit top_k", func(t *testing.T) {
		result := callTool(t, srv.handleSearchDocuments, map[string]any{"query": "refund", "top_k": float64(1)})
		assert.Equal(t, 1, retriever.topK)
		assert.Contains(t, resultText(t, result), "Found 1 fragment(s)")
	})

	t.Run("missing query", func(t *testing.T) {
		result := callTool(t, srv.handleSearchDocuments, map[string]any{})
		assert.True(t, result.IsError)
	})

	t.Run("no fragments", func(t *testing.T) {
		empty := NewServer(&mockAsker{}, &mockRetriever{}, &mockLister{}, 4)
		result := callTool(t, empty.handleSearchDocuments, map[string]any{"query": "anything"})
		assert.False(t, result.IsError, "empty results are not an error")
	})
}

func TestHandleListDocuments(t *testing.T) {
	lister := &mockLister{docs: []documents.SourceDocument{
		{ID: "d1", FilePath: "policy.pdf", Description: "refund policy", Processed: true},
		{ID: "d2", FilePath: "faq.pdf"},
	}}
	srv := NewServer(&mockAsker{}, &mockRetriever{}, lister, 3)

	text := resultText(t, callTool(t, srv.handleListDocuments, nil))
	assert.Contains(t, text, "- d1 [ingested] policy.pdf - refund policy")
	assert.Contains(t, text, "- d2 [pending] faq.pdf")
}
