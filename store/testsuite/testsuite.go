// Package testsuite holds the conformance tests every store backend runs.
package testsuite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

func newGame(id string) *store.Game {
	return &store.Game{
		ID:           id,
		Rows:         15,
		Columns:      15,
		Status:       store.GameStatusRunning,
		TickInterval: 100,
		Created:      time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func frame(turn int) *game.Frame {
	food := game.Position{Row: 0, Column: turn}
	return &game.Frame{
		Turn:      turn,
		Score:     turn / 2,
		Direction: game.Right,
		Snake: []game.Position{
			{Row: 7, Column: turn + 3},
			{Row: 7, Column: turn + 2},
			{Row: 7, Column: turn + 1},
		},
		Food: &food,
	}
}

func testStoreGames(t *testing.T, s store.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a game.
	err := s.CreateGame(ctx, newGame(key), nil)
	require.Nil(t, err)
	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, key, g.ID)
	require.Equal(t, 15, g.Rows)
	require.Equal(t, 15, g.Columns)
	require.Equal(t, 100, g.TickInterval)
	require.Equal(t, store.GameStatusRunning, g.Status)
	require.True(t, newGame(key).Created.Equal(g.Created))

	// NotFound error thrown.
	_, err = s.GetGame(ctx, key+"-missing")
	require.Equal(t, store.ErrNotFound, err)

	// Mutating the returned game does not leak into the store.
	g.Status = store.GameStatusError
	g, err = s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, store.GameStatusRunning, g.Status)
}

func testStoreGameStatus(t *testing.T, s store.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, newGame(key), []*game.Frame{frame(0)})
	require.Nil(t, err)

	err = s.SetGameStatus(ctx, key, store.GameStatusComplete)
	require.Nil(t, err)

	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, store.GameStatusComplete, g.Status)

	// Frames survive the status change.
	frames, err := s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Len(t, frames, 1)

	err = s.SetGameStatus(ctx, key+"-missing", store.GameStatusComplete)
	require.Equal(t, store.ErrNotFound, err)
}

func testStoreGameFrames(t *testing.T, s store.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, newGame(key), nil)
	require.Nil(t, err)

	// Read game frames, too high offset.
	frames, err := s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Read game frames, 0 offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Push game frames.
	for i := 0; i < 5; i++ {
		err = s.PushGameFrame(ctx, key, frame(i))
		require.Nil(t, err)
	}

	// Read the game frames.
	frames, err = s.ListGameFrames(ctx, key, 2, 0)
	require.Nil(t, err)
	require.Equal(t, []*game.Frame{frame(0), frame(1)}, frames)

	frames, err = s.ListGameFrames(ctx, key, 10, 3)
	require.Nil(t, err)
	require.Equal(t, []*game.Frame{frame(3), frame(4)}, frames)

	// Negative offset reads from the end.
	frames, err = s.ListGameFrames(ctx, key, 1, -1)
	require.Nil(t, err)
	require.Equal(t, []*game.Frame{frame(4)}, frames)

	// Read game frames that don't exist.
	frames, err = s.ListGameFrames(ctx, key+"-missing", 1, 0)
	require.Equal(t, store.ErrNotFound, err)
	require.Equal(t, 0, len(frames))

	// Read the game frames, too high offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))
}

func testStoreFrameSequence(t *testing.T, s store.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Initial frames must start at turn 0.
	err := s.CreateGame(ctx, newGame(key), []*game.Frame{frame(1)})
	require.Equal(t, store.ErrInvalidSequence, err)

	err = s.CreateGame(ctx, newGame(key), []*game.Frame{frame(0), frame(1)})
	require.Nil(t, err)

	// Skipping a turn is rejected.
	err = s.PushGameFrame(ctx, key, frame(3))
	require.Equal(t, store.ErrInvalidSequence, err)

	// Repeating a turn is rejected.
	err = s.PushGameFrame(ctx, key, frame(1))
	require.Equal(t, store.ErrInvalidSequence, err)

	err = s.PushGameFrame(ctx, key, frame(2))
	require.Nil(t, err)

	frames, err := s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Len(t, frames, 3)

	// Pushing to a missing game fails.
	err = s.PushGameFrame(ctx, key+"-missing", frame(0))
	require.Equal(t, store.ErrNotFound, err)
}

func testStoreConcurrentWriters(t *testing.T, s store.Store) {
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := make([]string, 10)
	for i := range keys {
		keys[i] = uuid.NewV4().String()
		require.Nil(t, s.CreateGame(ctx, newGame(keys[i]), []*game.Frame{frame(0)}))
	}

	errs := make(chan error, len(keys)*20)
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for turn := 1; turn <= 20; turn++ {
				if err := s.PushGameFrame(ctx, key, frame(turn)); err != nil {
					errs <- err
				}
			}
		}(key)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, key := range keys {
		frames, err := s.ListGameFrames(ctx, key, 100, 0)
		require.Nil(t, err)
		require.Len(t, frames, 21)
	}
}

// Suite will execute the store testsuite.
func Suite(t *testing.T, s store.Store, pretest func()) {
	s = store.InstrumentStore(s)
	t.Run("Games", func(t *testing.T) { pretest(); testStoreGames(t, s) })
	t.Run("GameStatus", func(t *testing.T) { pretest(); testStoreGameStatus(t, s) })
	t.Run("GameFrames", func(t *testing.T) { pretest(); testStoreGameFrames(t, s) })
	t.Run("FrameSequence", func(t *testing.T) { pretest(); testStoreFrameSequence(t, s) })
	t.Run("ConcurrentWriters", func(t *testing.T) { pretest(); testStoreConcurrentWriters(t, s) })
}
