package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docchat/internal/answer"
	"github.com/ziadkadry99/docchat/internal/chat"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/extract"
	"github.com/ziadkadry99/docchat/internal/history"
	"github.com/ziadkadry99/docchat/internal/ingest"
	"github.com/ziadkadry99/docchat/internal/retrieval"
)

type echoAnswerer struct{}

func (echoAnswerer) Answer(_ context.Context, question, docContext string, _ []answer.Exchange) string {
	return "**" + question + "** " + docContext
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	docs := documents.NewStore(database)
	hist := history.NewStore(database)
	embedder := embeddings.NewHashEmbedder(64)
	assembler := retrieval.NewAssembler(docs, embedder, 40, nil)

	deps := Deps{
		Documents: docs,
		History:   hist,
		Chat:      chat.NewService(assembler, echoAnswerer{}, hist, 2, 5, nil),
		Pipeline:  ingest.NewPipeline(extract.New(nil), embedder, docs, 40, nil),
	}
	return New(cfg, deps, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	w := doJSON(t, srv, "GET", "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newTestServer(t, Config{})

	path := filepath.Join(t.TempDir(), "policy.txt")
	content := "Refunds are accepted within thirty days of purchase with a receipt."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	w := doJSON(t, srv, "POST", "/api/documents", createDocumentRequest{FilePath: path, Description: "policy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc documents.SourceDocument
	decode(t, w, &doc)
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.Processed)

	w = doJSON(t, srv, "POST", "/api/ingest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res ingestResponse
	decode(t, w, &res)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, res.Fragments)
	assert.Empty(t, res.Errors)

	w = doJSON(t, srv, "GET", "/api/documents", nil)
	var docs []documents.SourceDocument
	decode(t, w, &docs)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Processed)

	w = doJSON(t, srv, "DELETE", "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, srv, "DELETE", "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDocumentRejectsMissingFile(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := doJSON(t, srv, "POST", "/api/documents", createDocumentRequest{FilePath: "/nonexistent/a.pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, srv, "POST", "/api/documents", createDocumentRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty path")
}

func TestListDocumentsEmpty(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := doJSON(t, srv, "GET", "/api/documents", nil)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestAskAndHistory(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := doJSON(t, srv, "POST", "/api/ask", askRequest{Question: "  what is covered?  ", UserID: "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp askResponse
	decode(t, w, &resp)
	assert.Equal(t, "what is covered?", resp.Question)
	assert.Contains(t, resp.AnswerHTML, "<strong>what is covered?</strong>")

	doJSON(t, srv, "POST", "/api/ask", askRequest{Question: "another", UserID: "bob"})

	w = doJSON(t, srv, "GET", "/api/history?user_id=alice", nil)
	var turns []history.Turn
	decode(t, w, &turns)
	require.Len(t, turns, 1)
	assert.Equal(t, resp.ID, turns[0].ID)

	w = doJSON(t, srv, "DELETE", "/api/history/"+resp.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, "DELETE", "/api/history", nil)
	var cleared map[string]int64
	decode(t, w, &cleared)
	assert.Equal(t, int64(1), cleared["deleted"], "only bob's turn remains")
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := doJSON(t, srv, "POST", "/api/ask", askRequest{Question: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed body")
}

func TestChatSocket(t *testing.T) {
	srv := newTestServer(t, Config{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(socketRequest{Question: "hello", UserID: "carol"}))
	var resp socketResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "answer", resp.Type)
	require.NotNil(t, resp.Turn)
	assert.Equal(t, "hello", resp.Turn.Question)

	require.NoError(t, conn.WriteJSON(socketRequest{Question: ""}))
	resp = socketResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	resp = socketResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid message format", resp.Error)
}
