package filestore

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/store/testsuite"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	lines  []string
	closed bool
	err    error
}

func (w *mockWriter) WriteString(s string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.lines = append(w.lines, s)
	return len(s), nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "filestore")
	require.NoError(t, err)
	return dir
}

var basicGame = &store.Game{
	ID:           "myid",
	Rows:         5,
	Columns:      5,
	Status:       store.GameStatusRunning,
	TickInterval: 100,
}

var basicFrames = []*game.Frame{
	{
		Turn:      0,
		Direction: game.Right,
		Snake:     []game.Position{{Row: 2, Column: 3}, {Row: 2, Column: 2}, {Row: 2, Column: 1}},
		Food:      &game.Position{Row: 2, Column: 4},
	},
	{
		Turn:      1,
		Score:     1,
		Direction: game.Right,
		Snake:     []game.Position{{Row: 2, Column: 4}, {Row: 2, Column: 3}, {Row: 2, Column: 2}, {Row: 2, Column: 1}},
		Food:      &game.Position{Row: 0, Column: 0},
	},
}

func TestFileStoreSuite(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	testsuite.Suite(t, NewFileStore(dir), func() {})
}

func TestFileStore(t *testing.T) {
	w := &mockWriter{}
	openFileWriter = func(directory, id string, replace bool) (writer, error) { return w, nil }
	defer func() { openFileWriter = appendOnlyFileWriter }()

	fs := NewFileStore("unused")
	err := fs.CreateGame(context.Background(), basicGame, basicFrames[:1])
	require.NoError(t, err)

	g, err := fs.GetGame(context.Background(), "myid")
	require.NoError(t, err)
	require.Equal(t, basicGame, g)

	err = fs.PushGameFrame(context.Background(), "myid", basicFrames[1])
	require.NoError(t, err)

	frames, err := fs.ListGameFrames(context.Background(), "myid", 5, 0)
	require.NoError(t, err)
	require.Equal(t, basicFrames, frames)

	require.Len(t, w.lines, 3)
	require.True(t, strings.HasPrefix(w.lines[0], `{"game":`))
	require.True(t, strings.HasPrefix(w.lines[1], `{"frame":`))

	err = fs.SetGameStatus(context.Background(), "myid", store.GameStatusComplete)
	require.NoError(t, err)
	require.True(t, w.closed)
}

func TestCreateGameHandlesWriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("fail")}
	openFileWriter = func(directory, id string, replace bool) (writer, error) { return w, nil }
	defer func() { openFileWriter = appendOnlyFileWriter }()

	fs := NewFileStore("unused")
	err := fs.CreateGame(context.Background(), basicGame, basicFrames[:1])
	require.NotNil(t, err)
}

func TestCreateGameHandlesOpenFileError(t *testing.T) {
	openFileWriter = func(directory, id string, replace bool) (writer, error) {
		return nil, errors.New("fail")
	}
	defer func() { openFileWriter = appendOnlyFileWriter }()

	fs := NewFileStore("unused")
	err := fs.CreateGame(context.Background(), basicGame, basicFrames[:1])
	require.NotNil(t, err)
}

func TestCreateGameReplacesArchive(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	ctx := context.Background()

	fs := NewFileStore(dir)
	require.NoError(t, fs.CreateGame(ctx, basicGame, basicFrames))
	require.NoError(t, fs.CreateGame(ctx, basicGame, basicFrames[:1]))

	frames, err := fs.ListGameFrames(ctx, "myid", 10, 0)
	require.NoError(t, err)
	require.Equal(t, basicFrames[:1], frames)

	// The file on disk agrees with the cache.
	frames, err = NewFileStore(dir).ListGameFrames(ctx, "myid", 10, 0)
	require.NoError(t, err)
	require.Equal(t, basicFrames[:1], frames)

	// So does a store that only knew the game from disk.
	require.NoError(t, NewFileStore(dir).CreateGame(ctx, basicGame, nil))
	frames, err = NewFileStore(dir).ListGameFrames(ctx, "myid", 10, 0)
	require.NoError(t, err)
	require.Empty(t, frames)
}

func TestReopenFromDisk(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	ctx := context.Background()

	fs := NewFileStore(dir)
	require.NoError(t, fs.CreateGame(ctx, basicGame, basicFrames))
	require.NoError(t, fs.SetGameStatus(ctx, "myid", store.GameStatusComplete))

	// A fresh store only has the file to go on.
	reopened := NewFileStore(dir)
	g, err := reopened.GetGame(ctx, "myid")
	require.NoError(t, err)
	require.Equal(t, store.GameStatusComplete, g.Status)
	require.Equal(t, 5, g.Rows)

	frames, err := reopened.ListGameFrames(ctx, "myid", 10, 0)
	require.NoError(t, err)
	require.Equal(t, basicFrames, frames)

	// Appending continues the sequence on disk.
	next := &game.Frame{Turn: 2, Direction: game.Down, Snake: []game.Position{{Row: 3, Column: 4}}}
	require.NoError(t, reopened.PushGameFrame(ctx, "myid", next))
	frames, err = NewFileStore(dir).ListGameFrames(ctx, "myid", 1, -1)
	require.NoError(t, err)
	require.Equal(t, []*game.Frame{next}, frames)
}

func TestReadArchiveMissing(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	_, _, err := readArchive(dir, "nope")
	require.Equal(t, store.ErrNotFound, err)
}

func TestReadArchiveCorrupt(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	require.NoError(t, ioutil.WriteFile(getFilePath(dir, "bad"), []byte("{not json\n"), 0644))
	_, _, err := readArchive(dir, "bad")
	require.Error(t, err)
}
