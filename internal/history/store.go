// Package history keeps the per-user conversation log that feeds follow-up
// questions.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docchat/internal/db"
)

// DefaultUser is the user ID recorded when a caller does not supply one.
const DefaultUser = "anonymous"

// Turn is one answered question.
type Turn struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Context  string    `json:"context,omitempty"`
	AskedAt  time.Time `json:"asked_at"`
}

// Store manages persistence of conversation turns.
type Store struct {
	db *db.DB
}

// NewStore creates a new history store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Append records a turn.
func (s *Store) Append(ctx context.Context, t Turn) (*Turn, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.UserID == "" {
		t.UserID = DefaultUser
	}
	if t.AskedAt.IsZero() {
		t.AskedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (id, user_id, question, answer, context, asked_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Question, t.Answer, t.Context, t.AskedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting turn: %w", err)
	}
	return &t, nil
}

// Recent returns the last limit turns of userID, oldest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	turns, err := s.query(ctx,
		`SELECT id, user_id, question, answer, context, asked_at
		 FROM conversation_turns WHERE user_id = ?
		 ORDER BY asked_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// List returns turns ordered by time. An empty userID lists every user.
func (s *Store) List(ctx context.Context, userID string) ([]Turn, error) {
	query := `SELECT id, user_id, question, answer, context, asked_at FROM conversation_turns`
	args := []interface{}{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY asked_at ASC, rowid ASC"
	return s.query(ctx, query, args...)
}

// Clear deletes the turns of userID, or every turn when userID is empty.
// It returns the number of deleted turns.
func (s *Store) Clear(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM conversation_turns`
	args := []interface{}{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a single turn and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversation_turns WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting turn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting turn: %w", err)
	}
	return n > 0, nil
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Question, &t.Answer, &t.Context, &t.AskedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
