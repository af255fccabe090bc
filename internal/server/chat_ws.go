package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketRequest is the incoming WebSocket message format.
type socketRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// socketResponse is the outgoing WebSocket message format.
type socketResponse struct {
	Type  string       `json:"type"` // "answer" or "error"
	Turn  *askResponse `json:"turn,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req socketRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendSocket(conn, socketResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		resp, err := s.answer(r, askRequest(req))
		switch {
		case errors.Is(err, chat.ErrEmptyQuestion):
			s.sendSocket(conn, socketResponse{Type: "error", Error: "question is required"})
		case err != nil:
			s.sendSocket(conn, socketResponse{Type: "error", Error: err.Error()})
		default:
			s.sendSocket(conn, socketResponse{Type: "answer", Turn: resp})
		}
	}
}

func (s *Server) sendSocket(conn *websocket.Conn, resp socketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write failed", zap.Error(err))
	}
}
