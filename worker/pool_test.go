package worker

import (
	"context"
	"testing"
	"time"

	"github.com/battlesnakeio/classic/store"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	ctx := context.Background()
	s := store.InMemStore()
	p := NewPool(2)

	a := newTestWorker(t, s, 15, 15, time.Hour)
	b := newTestWorker(t, s, 15, 15, time.Hour)
	c := newTestWorker(t, s, 15, 15, time.Hour)

	require.NoError(t, p.Start(ctx, a))
	require.Equal(t, ErrDuplicate, p.Start(ctx, a))
	require.NoError(t, p.Start(ctx, b))
	require.Equal(t, ErrPoolFull, p.Start(ctx, c))
	require.Equal(t, 2, p.Len())

	got, ok := p.Get(a.ID)
	require.True(t, ok)
	require.Equal(t, a, got)

	require.True(t, p.Stop(a.ID))
	require.False(t, p.Stop(a.ID))
	_, ok = p.Get(a.ID)
	require.False(t, ok)
	require.Equal(t, 1, p.Len())

	g, err := s.GetGame(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusStopped, g.Status)

	require.NoError(t, p.Start(ctx, c))
	p.StopAll()
	require.Equal(t, 0, p.Len())
}

func TestPoolRemovesFinishedGames(t *testing.T) {
	s := store.InMemStore()
	p := NewPool(0)

	w := newTestWorker(t, s, 1, 5, time.Millisecond)
	require.NoError(t, p.Start(context.Background(), w))
	p.Wait()

	require.Equal(t, 0, p.Len())
	g, err := s.GetGame(context.Background(), w.ID)
	require.NoError(t, err)
	require.Equal(t, store.GameStatusComplete, g.Status)
}
