// Package worker drives sessions: it ticks a game at a fixed interval,
// applies queued direction changes between ticks and records every frame to a
// store.
package worker

import (
	"context"
	"time"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MoveQueueSize is how many direction changes may wait between two ticks.
const MoveQueueSize = 8

// ErrInvalidTick is returned for a tick interval that is not positive.
var ErrInvalidTick = errors.New("worker: tick interval must be positive")

// Worker owns a single game. The game is only touched from the goroutine
// calling Run.
type Worker struct {
	ID           string
	Game         *game.Game
	Store        store.Store
	TickInterval time.Duration
	// OnFrame, when set, is called with every frame after it is stored.
	OnFrame func(*game.Frame)

	moves chan game.Direction
	done  chan struct{}
}

// New returns a worker for an already stored game.
func New(id string, g *game.Game, s store.Store, tick time.Duration) *Worker {
	return &Worker{
		ID:           id,
		Game:         g,
		Store:        s,
		TickInterval: tick,
		moves:        make(chan game.Direction, MoveQueueSize),
		done:         make(chan struct{}),
	}
}

// Move queues a direction change for the next tick. It returns false when
// the queue is full or the worker is finished.
func (w *Worker) Move(d game.Direction) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.moves <- d:
		return true
	default:
		return false
	}
}

// Done is closed once Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Run ticks the game until the snake dies or ctx is cancelled. The final
// status is written to the store before returning.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)

	gamesRunning.Inc()
	defer gamesRunning.Dec()

	logger := log.WithField("game", w.ID)
	if w.TickInterval <= 0 {
		logger.WithField("tick", w.TickInterval).Error("ending game with invalid tick")
		if endErr := w.finish(store.GameStatusError); endErr != nil {
			logger.WithError(endErr).Error("failed to end game")
		}
		return errors.Wrapf(ErrInvalidTick, "%v", w.TickInterval)
	}
	logger.WithField("tick", w.TickInterval).Info("starting game")

	ticker := time.NewTicker(w.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WithField("turn", w.Game.Turn()).Info("stopping game")
			return w.finish(store.GameStatusStopped)
		case d := <-w.moves:
			w.Game.ChangeDirection(d)
		case <-ticker.C:
			outcome := w.Game.Step()
			stepsTotal.WithLabelValues(string(outcome)).Inc()

			frame := w.Game.Snapshot()
			if err := w.Store.PushGameFrame(ctx, w.ID, frame); err != nil {
				if ctx.Err() != nil {
					logger.WithField("turn", frame.Turn).Info("stopping game")
					return w.finish(store.GameStatusStopped)
				}
				logger.WithError(err).
					WithField("turn", frame.Turn).
					Error("ending game due to store error")
				if endErr := w.finish(store.GameStatusError); endErr != nil {
					logger.WithError(endErr).Error("failed to end game after store error")
				}
				return errors.Wrap(err, "unable to push frame")
			}
			if w.OnFrame != nil {
				w.OnFrame(frame)
			}

			if w.Game.Over() {
				fields := log.Fields{
					"turn":  frame.Turn,
					"score": frame.Score,
				}
				if frame.Death != nil {
					fields["cause"] = frame.Death.Cause
				}
				logger.WithFields(fields).Info("ending game")
				return w.finish(store.GameStatusComplete)
			}
		}
	}
}

// finish writes the final status. It is called when the run context may
// already be cancelled so it uses its own.
func (w *Worker) finish(status store.GameStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.Store.SetGameStatus(ctx, w.ID, status)
}
