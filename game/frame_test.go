package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	food := Position{Row: 0, Column: 0}
	g := newTestGame(3, 5, []Position{
		{Row: 1, Column: 3},
		{Row: 1, Column: 2},
		{Row: 1, Column: 1},
	}, &food, Right)
	g.Step()

	f := g.Snapshot()
	require.Equal(t, 1, f.Turn)
	require.Equal(t, Right, f.Direction)
	require.Equal(t, []Position{
		{Row: 1, Column: 4},
		{Row: 1, Column: 3},
		{Row: 1, Column: 2},
	}, f.Snake)
	require.Equal(t, &food, f.Food)
	require.False(t, f.Over)
	require.Nil(t, f.Death)

	head, ok := f.Head()
	require.True(t, ok)
	require.Equal(t, g.Head(), head)

	// Snapshots are copies.
	f.Snake[0] = Position{}
	require.Equal(t, Position{Row: 1, Column: 4}, g.Head())
}

func TestSnapshotAfterDeath(t *testing.T) {
	g := newTestGame(3, 5, []Position{
		{Row: 1, Column: 4},
		{Row: 1, Column: 3},
		{Row: 1, Column: 2},
	}, nil, Right)
	g.Step()

	f := g.Snapshot()
	require.True(t, f.Over)
	require.Nil(t, f.Food)
	require.Equal(t, &Death{Turn: 1, Cause: DeathCauseWallCollision}, f.Death)
}

func TestFrameCells(t *testing.T) {
	g, err := New(7, 9, WithSeed(11))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		g.Step()
	}

	require.Equal(t, g.Grid(), g.Snapshot().Cells(g.Rows(), g.Columns()))
}
