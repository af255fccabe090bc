package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docchat/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestRecentOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.Append(ctx, Turn{
			UserID:   "alice",
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
			AskedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := s.Append(ctx, Turn{UserID: "bob", Question: "other", AskedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	recent, err := s.Recent(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "q2", recent[0].Question)
	assert.Equal(t, "q4", recent[2].Question)

	none, err := s.Recent(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppendDefaultsUser(t *testing.T) {
	s := newTestStore(t)
	turn, err := s.Append(context.Background(), Turn{Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUser, turn.UserID)
	assert.NotEmpty(t, turn.ID)
}

func TestListClearDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Append(ctx, Turn{UserID: "alice", Question: "one"})
	require.NoError(t, err)
	_, err = s.Append(ctx, Turn{UserID: "alice", Question: "two"})
	require.NoError(t, err)
	_, err = s.Append(ctx, Turn{UserID: "bob", Question: "three"})
	require.NoError(t, err)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ok, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Clear(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rest, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "bob", rest[0].UserID)

	n, err = s.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
