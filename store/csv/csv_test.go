package csv

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/stretchr/testify/require"
)

// playRandom plays a seeded game with random moves until it ends.
func playRandom(t *testing.T, g *store.Game) []*game.Frame {
	sg, err := game.New(g.Rows, g.Columns, game.WithSeed(g.Seed))
	require.NoError(t, err)

	moves := rand.New(rand.NewSource(7))
	frames := []*game.Frame{sg.Snapshot()}
	for !sg.Over() {
		if moves.Intn(3) == 0 {
			sg.ChangeDirection(game.Directions[moves.Intn(len(game.Directions))])
		}
		sg.Step()
		frames = append(frames, sg.Snapshot())
	}
	return frames
}

func TestWriteReadReplay(t *testing.T) {
	g := &store.Game{ID: "1234", Rows: 6, Columns: 7, Status: store.GameStatusComplete, Seed: 42}
	frames := playRandom(t, g)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteGame(buf, g, frames))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, strings.HasPrefix(lines[0], `#{"id":"1234"`))
	require.Equal(t, "turn,move", lines[1])
	require.Len(t, lines, len(frames)+1)

	meta, moves, err := ReadGame(buf)
	require.NoError(t, err)
	require.Equal(t, g.ID, meta.ID)
	require.Equal(t, g.Seed, meta.Seed)
	require.Len(t, moves, len(frames)-1)

	replayed, err := Replay(meta, moves)
	require.NoError(t, err)
	require.Equal(t, frames, replayed)
}

func TestReadTruncatedLastRow(t *testing.T) {
	archive := "#{\"id\":\"1\",\"rows\":3,\"columns\":5,\"seed\":1}\nturn,move\n1,r\n2,"
	_, moves, err := ReadGame(strings.NewReader(archive))
	require.NoError(t, err)
	require.Equal(t, []game.Direction{game.Right}, moves)
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"NoMetadata":  "turn,move\n1,r\n",
		"BadMove":     "#{\"id\":\"1\"}\nturn,move\n1,x\n",
		"SkippedTurn": "#{\"id\":\"1\"}\nturn,move\n1,r\n3,r\n",
		"ShortRow":    "#{\"id\":\"1\"}\nturn,move\n1\n2,r\n",
	}
	for name, archive := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadGame(strings.NewReader(archive))
			require.Error(t, err)
		})
	}
}

func TestWriteRejectsGaps(t *testing.T) {
	g := &store.Game{ID: "1", Rows: 3, Columns: 5}
	err := WriteGame(&bytes.Buffer{}, g, []*game.Frame{{Turn: 0}, {Turn: 2, Direction: game.Up}})
	require.Equal(t, store.ErrInvalidSequence, err)
}

func TestReplayMovesAfterGameOver(t *testing.T) {
	g := &store.Game{ID: "1", Rows: 1, Columns: 5, Seed: 1}
	// Up leaves a single row board straight away.
	_, err := Replay(g, []game.Direction{game.Up, game.Up})
	require.Error(t, err)
}
