// Package store persists games and the frames produced by every tick so they
// can be inspected, streamed and replayed.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/battlesnakeio/classic/game"
)

var (
	// ErrNotFound is returned when a game is not found.
	ErrNotFound = errors.New("store: game not found")
	// ErrInvalidSequence is returned when a frame does not follow the last
	// stored turn.
	ErrInvalidSequence = errors.New("store: invalid frame sequence")
)

// GameStatus is the lifecycle state of a stored game.
type GameStatus string

const (
	// GameStatusRunning is a game that is still being ticked.
	GameStatusRunning GameStatus = "running"
	// GameStatusComplete is a game that ended with the snake dying.
	GameStatusComplete GameStatus = "complete"
	// GameStatusStopped is a game abandoned before the snake died.
	GameStatusStopped GameStatus = "stopped"
	// GameStatusError is a game that ended because of an error.
	GameStatusError GameStatus = "error"
)

// Game describes a recorded session. Replaying the recorded moves on a new
// game seeded with Seed reproduces every frame.
type Game struct {
	ID           string     `json:"id"`
	Rows         int        `json:"rows"`
	Columns      int        `json:"columns"`
	Status       GameStatus `json:"status"`
	TickInterval int        `json:"tick_ms"`
	Seed         int64      `json:"seed,omitempty"`
	Created      time.Time  `json:"created"`
}

// Store is the interface to the backend store.
type Store interface {
	// CreateGame inserts a game along with its initial frames.
	CreateGame(context.Context, *Game, []*game.Frame) error
	// PushGameFrame appends a frame; its turn must follow the last one.
	PushGameFrame(ctx context.Context, id string, f *game.Frame) error
	// ListGameFrames lists frames by offset and limit. A negative offset
	// counts back from the last frame.
	ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error)
	// GetGame fetches the game.
	GetGame(ctx context.Context, id string) (*Game, error)
	// SetGameStatus updates the status of a game.
	SetGameStatus(ctx context.Context, id string, status GameStatus) error
}

// NextTurn checks that frames continue contiguously after last, the turn of
// the most recently stored frame (-1 when there is none).
func NextTurn(last int, frames ...*game.Frame) error {
	for _, f := range frames {
		last++
		if f.Turn != last {
			return ErrInvalidSequence
		}
	}
	return nil
}

// PageBounds resolves offset and limit semantics shared by every backend for
// a list of n frames. It returns the half open range [start, end) and false
// when the page is empty.
func PageBounds(n, limit, offset int) (int, int, bool) {
	if offset < 0 {
		offset = n + offset
		if offset < 0 {
			offset = 0
		}
	}
	if n == 0 || offset >= n || limit <= 0 {
		return 0, 0, false
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end, true
}

// Page applies PageBounds to a full list of frames.
func Page(frames []*game.Frame, limit, offset int) []*game.Frame {
	start, end, ok := PageBounds(len(frames), limit, offset)
	if !ok {
		return nil
	}
	return frames[start:end]
}

// InMemStore returns an in memory implementation of the Store interface.
func InMemStore() Store {
	return &inmem{
		games:  map[string]*Game{},
		frames: map[string][]*game.Frame{},
	}
}

type inmem struct {
	games  map[string]*Game
	frames map[string][]*game.Frame
	lock   sync.Mutex
}

func (in *inmem) CreateGame(ctx context.Context, g *Game, frames []*game.Frame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if err := NextTurn(-1, frames...); err != nil {
		return err
	}
	clone := *g
	in.games[g.ID] = &clone
	in.frames[g.ID] = append([]*game.Frame{}, frames...)
	return nil
}

func (in *inmem) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return ErrNotFound
	}
	frames := in.frames[id]
	last := -1
	if len(frames) > 0 {
		last = frames[len(frames)-1].Turn
	}
	if err := NextTurn(last, f); err != nil {
		return err
	}
	in.frames[id] = append(frames, f)
	return nil
}

func (in *inmem) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return nil, ErrNotFound
	}
	page := Page(in.frames[id], limit, offset)
	return append([]*game.Frame(nil), page...), nil
}

func (in *inmem) GetGame(ctx context.Context, id string) (*Game, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if g, ok := in.games[id]; ok {
		clone := *g
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (in *inmem) SetGameStatus(ctx context.Context, id string, status GameStatus) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	g, ok := in.games[id]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	return nil
}
