package commands

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/battlesnakeio/classic/api"
	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/store/csv"
	"github.com/battlesnakeio/classic/worker"
	termbox "github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadGlyph(t *testing.T) {
	assert.Equal(t, '▲', headGlyph(game.Up))
	assert.Equal(t, '▼', headGlyph(game.Down))
	assert.Equal(t, '◀', headGlyph(game.Left))
	assert.Equal(t, '▶', headGlyph(game.Right))
}

func TestCentered(t *testing.T) {
	assert.Equal(t, 4+6, centered(4, 30, startMessage[:18]))
	assert.Equal(t, 4, centered(4, 10, startMessage))
}

func TestTitle(t *testing.T) {
	f := &game.Frame{Score: 3}
	assert.Equal(t, "SCORE 3", title(f))
	f.Death = &game.Death{Turn: 9, Cause: game.DeathCauseWallCollision}
	assert.Equal(t, "SCORE 3 - wall-collision", title(f))
}

func TestEventDirection(t *testing.T) {
	d, ok := eventDirection(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp})
	require.True(t, ok)
	assert.Equal(t, game.Up, d)

	d, ok = eventDirection(termbox.Event{Type: termbox.EventKey, Ch: 'a'})
	require.True(t, ok)
	assert.Equal(t, game.Left, d)

	_, ok = eventDirection(termbox.Event{Type: termbox.EventKey, Ch: 'x'})
	assert.False(t, ok)
	_, ok = eventDirection(termbox.Event{Type: termbox.EventResize})
	assert.False(t, ok)

	assert.True(t, isQuit(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}))
	assert.False(t, isQuit(termbox.Event{Type: termbox.EventKey, Ch: 'q'}))
}

func TestFrameHolder(t *testing.T) {
	fh := newFrameHolder()
	require.Nil(t, fh.get(0))

	for i := 0; i < 3; i++ {
		fh.append(&game.Frame{Turn: i})
	}
	require.Equal(t, 3, fh.count())

	f, err := getInitialFrame(fh)
	require.NoError(t, err)
	require.Equal(t, 0, f.Turn)

	i, f, done := moveFrameForwards(0, fh)
	require.False(t, done)
	require.Equal(t, 1, i)
	require.Equal(t, 1, f.Turn)

	i, f, done = moveFrameForwards(2, fh)
	require.True(t, done)
	require.Equal(t, 3, i)
	require.Nil(t, f)

	i, f = moveFrameBackwards(0, fh)
	require.Equal(t, 0, i)
	require.Equal(t, 0, f.Turn)
}

func TestInitialFrameTimeout(t *testing.T) {
	_, err := getInitialFrame(newFrameHolder())
	require.Error(t, err)
}

func TestSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:3005/socket/abc", socketURL("http://localhost:3005", "abc"))
	assert.Equal(t, "wss://snake.example.com/socket/abc", socketURL("https://snake.example.com", "abc"))
}

func TestOpenStore(t *testing.T) {
	s, err := openStore("inmem", "")
	require.NoError(t, err)
	closeStore(s)

	_, err = openStore("floppy", "")
	require.Error(t, err)
}

func TestClientAgainstAPI(t *testing.T) {
	pool := worker.NewPool(10)
	defer pool.StopAll()
	srv := api.New(":0", store.InMemStore(), pool)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	old := apiAddr
	apiAddr = ts.URL
	defer func() { apiAddr = old }()

	resp := &api.CreateResponse{}
	require.NoError(t, call("POST", "/games", &api.CreateRequest{Rows: 8, Columns: 8, TickMS: 3600000}, resp))
	require.NotEmpty(t, resp.ID)

	sr, err := getStatus(resp.ID)
	require.NoError(t, err)
	require.Equal(t, 8, sr.Game.Rows)
	require.Equal(t, 0, sr.LastFrame.Turn)

	path := fmt.Sprintf("/games/%s/move", resp.ID)
	require.NoError(t, call("POST", path, &api.MoveRequest{Direction: "down"}, nil))

	err = call("POST", path, &api.MoveRequest{Direction: "north"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	_, err = getStatus("missing")
	require.Error(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, exportGame(buf, resp.ID))
	g, moves, err := csv.ReadGame(buf)
	require.NoError(t, err)
	require.Equal(t, resp.ID, g.ID)
	require.NotZero(t, g.Seed)
	require.Empty(t, moves)
}

func TestLoadArchive(t *testing.T) {
	f, err := ioutil.TempFile("", "snake-archive")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	g := &store.Game{ID: "abc", Rows: 3, Columns: 5, Seed: 9}
	frames, err := csv.Replay(g, []game.Direction{game.Right, game.Up})
	require.NoError(t, err)
	require.NoError(t, csv.WriteGame(f, g, frames))
	require.NoError(t, f.Close())

	loaded, holder, err := loadArchive(f.Name())
	require.NoError(t, err)
	require.Equal(t, "abc", loaded.ID)
	require.Equal(t, 3, holder.count())
	require.Equal(t, frames[2], holder.get(2))
}
