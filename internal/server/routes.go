package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/chat"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/history"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Post("/api/ask", s.handleAsk)
	r.Post("/api/ingest", s.handleIngest)

	r.Get("/api/documents", s.handleListDocuments)
	r.Post("/api/documents", s.handleCreateDocument)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)

	r.Get("/api/history", s.handleListHistory)
	r.Delete("/api/history", s.handleClearHistory)
	r.Delete("/api/history/{id}", s.handleDeleteTurn)
}

type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

type askResponse struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnswerHTML string    `json:"answer_html,omitempty"`
	AskedAt    time.Time `json:"asked_at"`
}

func (s *Server) answer(r *http.Request, req askRequest) (*askResponse, error) {
	turn, err := s.deps.Chat.Ask(r.Context(), req.UserID, req.Question)
	if err != nil {
		return nil, err
	}
	resp := &askResponse{ID: turn.ID, Question: turn.Question, Answer: turn.Answer, AskedAt: turn.AskedAt}
	if html, err := s.deps.Markdown.HTML(turn.Answer); err == nil {
		resp.AnswerHTML = html
	} else {
		s.logger.Warn("rendering answer failed", zap.Error(err))
	}
	return resp, nil
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := s.answer(r, req)
	if errors.Is(err, chat.ErrEmptyQuestion) {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type ingestResponse struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Fragments int      `json:"fragments"`
	Errors    []string `json:"errors"`
	Duration  string   `json:"duration"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	res, err := s.deps.Pipeline.Run(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := ingestResponse{
		Processed: res.Processed,
		Failed:    res.Failed,
		Fragments: res.Fragments,
		Errors:    []string{},
		Duration:  res.Duration.String(),
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.deps.Documents.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []documents.SourceDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

type createDocumentRequest struct {
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	UploadedBy  string `json:"uploaded_by"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FilePath == "" {
		http.Error(w, "file_path is required", http.StatusBadRequest)
		return
	}
	if info, err := os.Stat(req.FilePath); err != nil || info.IsDir() {
		http.Error(w, "file_path does not point to a readable file", http.StatusBadRequest)
		return
	}

	doc, err := s.deps.Documents.Create(r.Context(), documents.SourceDocument{
		FilePath:    req.FilePath,
		Description: req.Description,
		UploadedBy:  req.UploadedBy,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Documents.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.deps.History.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.History.Clear(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) handleDeleteTurn(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.History.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "turn not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
