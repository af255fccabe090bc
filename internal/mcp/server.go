package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/history"
	"github.com/ziadkadry99/docchat/internal/retrieval"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Asker answers a question and records the turn.
type Asker interface {
	Ask(ctx context.Context, userID, question string) (*history.Turn, error)
}

// Retriever returns the fragments most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]retrieval.Hit, error)
}

// DocumentLister lists registered source documents.
type DocumentLister interface {
	List(ctx context.Context) ([]documents.SourceDocument, error)
}

// Server wraps an MCP server that exposes the document assistant as tools.
type Server struct {
	asker     Asker
	retriever Retriever
	docs      DocumentLister
	topK      int
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(asker Asker, retriever Retriever, docs DocumentLister, topK int) *Server {
	if topK <= 0 {
		topK = 5
	}
	s := &Server{
		asker:     asker,
		retriever: retriever,
		docs:      docs,
		topK:      topK,
	}

	s.mcp = server.NewMCPServer(
		"docchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
