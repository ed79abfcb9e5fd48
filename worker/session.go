package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Options configures a new session.
type Options struct {
	Rows         int
	Columns      int
	TickInterval time.Duration
	// Seed fixes food placement, a random one is picked when zero.
	Seed int64
}

// NewSession creates a game, stores it with its opening frame and returns a
// worker ready to run it.
func NewSession(ctx context.Context, s store.Store, opts Options) (*Worker, error) {
	if opts.TickInterval <= 0 {
		return nil, errors.Wrapf(ErrInvalidTick, "%v", opts.TickInterval)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	g, err := game.New(opts.Rows, opts.Columns, game.WithSeed(seed))
	if err != nil {
		return nil, err
	}

	id := uuid.NewV4().String()
	info := &store.Game{
		ID:           id,
		Rows:         opts.Rows,
		Columns:      opts.Columns,
		Status:       store.GameStatusRunning,
		TickInterval: int(opts.TickInterval / time.Millisecond),
		Seed:         seed,
		Created:      time.Now().UTC(),
	}
	if err := s.CreateGame(ctx, info, []*game.Frame{g.Snapshot()}); err != nil {
		return nil, err
	}
	return New(id, g, s, opts.TickInterval), nil
}
