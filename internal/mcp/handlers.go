package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/retrieval"
)

// handleAskDocuments answers a question through the chat service.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	turn, err := s.asker.Ask(ctx, request.GetString("user_id", ""), question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}
	return mcp.NewToolResultText(turn.Answer), nil
}

// handleSearchDocuments runs a similarity search over the ingested fragments.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	topK := request.GetInt("top_k", s.topK)
	if topK <= 0 {
		topK = s.topK
	}

	hits, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(hits) == 0 {
		return mcp.NewToolResultText("No fragments found. Register documents and run `docchat ingest` first."), nil
	}

	return mcp.NewToolResultText(formatHits(hits)), nil
}

// handleListDocuments lists the registered documents.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents registered."), nil
	}
	return mcp.NewToolResultText(formatDocuments(docs)), nil
}

func formatHits(hits []retrieval.Hit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d fragment(s):\n", len(hits)))

	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("\n--- Fragment %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Document: %s\n", h.DocumentID))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", h.Similarity*100))
		sb.WriteString("\n")
		sb.WriteString(h.Fragment)
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatDocuments(docs []documents.SourceDocument) string {
	var sb strings.Builder
	for _, d := range docs {
		status := "pending"
		if d.Processed {
			status = "ingested"
		}
		sb.WriteString(fmt.Sprintf("- %s [%s] %s", d.ID, status, d.FilePath))
		if d.Description != "" {
			sb.WriteString(" - " + d.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
