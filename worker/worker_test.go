package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, s store.Store, rows, columns int, tick time.Duration) *Worker {
	w, err := NewSession(context.Background(), s, Options{
		Rows:         rows,
		Columns:      columns,
		TickInterval: tick,
		Seed:         1,
	})
	require.NoError(t, err)
	return w
}

func TestNewSessionStoresOpeningFrame(t *testing.T) {
	ctx := context.Background()
	s := store.InMemStore()
	w := newTestWorker(t, s, 15, 15, 100*time.Millisecond)

	g, err := s.GetGame(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusRunning, g.Status)
	require.Equal(t, 100, g.TickInterval)
	require.Equal(t, 15, g.Rows)

	frames, err := s.ListGameFrames(ctx, w.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, 0, frames[0].Turn)
	require.Len(t, frames[0].Snake, game.InitialLength)
}

func TestNewSessionInvalidDimensions(t *testing.T) {
	_, err := NewSession(context.Background(), store.InMemStore(), Options{
		Rows: 1, Columns: 2, TickInterval: time.Millisecond,
	})
	require.Error(t, err)
}

func TestNewSessionInvalidTick(t *testing.T) {
	for _, tick := range []time.Duration{0, -time.Millisecond} {
		s := store.InMemStore()
		w, err := NewSession(context.Background(), s, Options{
			Rows: 5, Columns: 5, TickInterval: tick,
		})
		require.Nil(t, w)
		require.Equal(t, ErrInvalidTick, pkgerrors.Cause(err), "tick %v", tick)
	}
}

func TestWorkerRunInvalidTick(t *testing.T) {
	s := store.InMemStore()
	w := newTestWorker(t, s, 5, 5, time.Millisecond)
	w.TickInterval = 0

	err := w.Run(context.Background())
	require.Equal(t, ErrInvalidTick, pkgerrors.Cause(err))
	<-w.Done()

	g, err := s.GetGame(context.Background(), w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusError, g.Status)
}

func TestWorkerRunsToCompletion(t *testing.T) {
	ctx := context.Background()
	s := store.InMemStore()
	// One row: the snake hits the right wall within two steps.
	w := newTestWorker(t, s, 1, 5, time.Millisecond)

	var seen []*game.Frame
	w.OnFrame = func(f *game.Frame) { seen = append(seen, f) }

	require.NoError(t, w.Run(ctx))

	g, err := s.GetGame(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusComplete, g.Status)

	frames, err := s.ListGameFrames(ctx, w.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, frames, len(seen)+1)
	for i, f := range frames {
		require.Equal(t, i, f.Turn)
	}
	last := frames[len(frames)-1]
	require.True(t, last.Over)
	require.Equal(t, game.DeathCauseWallCollision, last.Death.Cause)

	select {
	case <-w.Done():
	default:
		t.Fatal("done not closed")
	}
	require.False(t, w.Move(game.Up))
}

func TestWorkerAppliesMoves(t *testing.T) {
	ctx := context.Background()
	s := store.InMemStore()
	w := newTestWorker(t, s, 3, 5, 20*time.Millisecond)

	// Queued before the first tick, so it applies to turn one.
	require.True(t, w.Move(game.Up))
	require.NoError(t, w.Run(ctx))

	frames, err := s.ListGameFrames(ctx, w.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.Equal(t, game.Up, frames[1].Direction)
	require.Equal(t, game.Position{Row: 0, Column: 3}, frames[1].Snake[0])
	require.Equal(t, &game.Death{Turn: 2, Cause: game.DeathCauseWallCollision}, frames[2].Death)
}

func TestWorkerMoveQueueFull(t *testing.T) {
	w := newTestWorker(t, store.InMemStore(), 15, 15, time.Hour)
	for i := 0; i < MoveQueueSize; i++ {
		require.True(t, w.Move(game.Down))
	}
	require.False(t, w.Move(game.Down))
}

func TestWorkerStopsOnCancel(t *testing.T) {
	s := store.InMemStore()
	w := newTestWorker(t, s, 15, 15, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	g, err := s.GetGame(context.Background(), w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusStopped, g.Status)
}

type failingStore struct {
	store.Store
}

var errPush = errors.New("push failed")

func (f *failingStore) PushGameFrame(ctx context.Context, id string, fr *game.Frame) error {
	return errPush
}

func TestWorkerStoreError(t *testing.T) {
	s := store.InMemStore()
	w := newTestWorker(t, s, 15, 15, time.Millisecond)
	w.Store = &failingStore{Store: s}

	err := w.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), errPush.Error())

	g, err := s.GetGame(context.Background(), w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusError, g.Status)
}
