package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	return NewStore(db)
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()
	require.NoError(t, s.CreateGame(ctx, NewGame{ID: uuid.New()}))
	require.NoError(t, s.RecordMove(ctx, uuid.New(), 0, "A1-A2", "white"))
	_, err := s.LoadGame(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
	stats, err := s.FetchStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Started)
}

func TestGameLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.CreateGame(ctx, NewGame{ID: id, Size: 3, Keys: [2]string{"w", "b"}, State: "{}", LastSeen: now}))
	require.NoError(t, s.RecordMove(ctx, id, 1, "B2-B3", "black"))
	require.NoError(t, s.RecordMove(ctx, id, 0, "B1-A1", "white"))

	state := `{"nextPlayer":-1}`
	used := 1500 * time.Millisecond
	require.NoError(t, s.SaveGameState(ctx, id, GameStateUpdate{State: &state, WhiteUsed: &used}))

	g, err := s.LoadGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size)
	assert.Equal(t, "w", g.WhiteKey)
	assert.Equal(t, state, g.State)
	assert.Equal(t, int64(1500), g.WhiteUsedMs)
	require.Len(t, g.Moves, 2)
	assert.Equal(t, "B1-A1", g.Moves[0].Notation)
	assert.True(t, g.Active)

	require.NoError(t, s.CompleteGame(ctx, id, now))
	stats, err := s.FetchStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Started: 1, Completed: 1, Active: 0}, stats)

	_, err = s.LoadGame(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}
