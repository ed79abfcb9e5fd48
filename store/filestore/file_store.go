// Package filestore is a store backed by one append only JSON lines file per
// game.
package filestore

import (
	"context"
	"os/user"
	"path"
	"sync"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	log "github.com/sirupsen/logrus"
)

func defaultDir() string {
	return path.Join(homeDir(), ".snake/games")
}

func homeDir() string {
	usr, err := user.Current()
	if err != nil {
		return "."
	}
	return usr.HomeDir
}

// NewFileStore returns a file based store implementation (1 file per game).
func NewFileStore(directory string) store.Store {
	if directory == "" {
		directory = defaultDir()
	}

	return &fileStore{
		games:     map[string]*store.Game{},
		frames:    map[string][]*game.Frame{},
		writers:   map[string]writer{},
		directory: directory,
	}
}

type fileStore struct {
	games     map[string]*store.Game
	frames    map[string][]*game.Frame
	writers   map[string]writer
	lock      sync.Mutex
	directory string
}

// closeGame removes the game from in-memory cache and closes the handle to its
// file. Should be called when game is complete.
func (fs *fileStore) closeGame(id string) {
	if w, ok := fs.writers[id]; ok {
		err := w.Close()
		if err != nil {
			log.WithError(err).WithField("game", id).Error("Error while closing file writer")
		}
	}
	delete(fs.games, id)
	delete(fs.frames, id)
	delete(fs.writers, id)
}

func (fs *fileStore) CreateGame(ctx context.Context, g *store.Game, frames []*game.Frame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := store.NextTurn(-1, frames...); err != nil {
		return err
	}

	// Recreating a game starts its archive over.
	fs.closeGame(g.ID)
	handle, err := fs.requireHandle(g.ID, true)
	if err != nil {
		return err
	}
	clone := *g
	if err := writeGameInfo(handle, &clone); err != nil {
		return err
	}
	fs.games[g.ID] = &clone
	fs.frames[g.ID] = []*game.Frame{}
	for _, f := range frames {
		if err := fs.appendFrame(g.ID, f); err != nil {
			return err
		}
	}
	return nil
}

func (fs *fileStore) SetGameStatus(ctx context.Context, id string, status store.GameStatus) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	g, err := fs.requireGame(id)
	if err != nil {
		return err
	}
	handle, err := fs.requireHandle(id, false)
	if err != nil {
		return err
	}

	g.Status = status
	if err := writeGameInfo(handle, g); err != nil {
		return err
	}
	if status != store.GameStatusRunning {
		fs.closeGame(id)
	}
	return nil
}

func (fs *fileStore) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	frames, err := fs.requireFrames(id)
	if err != nil {
		return err
	}
	last := -1
	if len(frames) > 0 {
		last = frames[len(frames)-1].Turn
	}
	if err := store.NextTurn(last, f); err != nil {
		return err
	}
	return fs.appendFrame(id, f)
}

func (fs *fileStore) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	frames, err := fs.requireFrames(id)
	if err != nil {
		return nil, err
	}
	return append([]*game.Frame(nil), store.Page(frames, limit, offset)...), nil
}

func (fs *fileStore) GetGame(ctx context.Context, id string) (*store.Game, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	g, err := fs.requireGame(id)
	if err != nil {
		return nil, err
	}

	// Copy the game, since this could be modified after this is returned
	// and upset internal state inside the store.
	clone := *g
	return &clone, nil
}

// Close flushes and closes every open game file.
func (fs *fileStore) Close() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	for id := range fs.writers {
		fs.closeGame(id)
	}
	return nil
}

func (fs *fileStore) requireHandle(id string, replace bool) (writer, error) {
	if w, ok := fs.writers[id]; ok {
		return w, nil
	}

	handle, err := openFileWriter(fs.directory, id, replace)
	if err != nil {
		return nil, err
	}

	fs.writers[id] = handle
	return handle, nil
}

// requireGame loads the game and its frames from disk when they are not
// cached yet.
func (fs *fileStore) requireGame(id string) (*store.Game, error) {
	if g, ok := fs.games[id]; ok {
		return g, nil
	}

	g, frames, err := readArchive(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.games[id] = g
	fs.frames[id] = frames
	return g, nil
}

func (fs *fileStore) requireFrames(id string) ([]*game.Frame, error) {
	if _, err := fs.requireGame(id); err != nil {
		return nil, err
	}
	return fs.frames[id], nil
}

func (fs *fileStore) appendFrame(id string, f *game.Frame) error {
	handle, err := fs.requireHandle(id, false)
	if err != nil {
		return err
	}

	// Add frame to archive file, then to the in-memory cache.
	if err := writeFrame(handle, f); err != nil {
		return err
	}
	fs.frames[id] = append(fs.frames[id], f)
	return nil
}

func getFilePath(directory string, id string) string {
	return path.Join(directory, id) + ".snake"
}
