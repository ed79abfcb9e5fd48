package worker

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrPoolFull is returned when the pool already runs its maximum number
	// of games.
	ErrPoolFull = errors.New("worker: too many running games")
	// ErrDuplicate is returned when a worker with the same id is running.
	ErrDuplicate = errors.New("worker: game already running")
)

// Pool tracks running workers by game id.
type Pool struct {
	max     int
	lock    sync.Mutex
	workers map[string]*entry
	wg      sync.WaitGroup
}

type entry struct {
	w      *Worker
	cancel context.CancelFunc
}

// NewPool returns a pool running at most max games, max <= 0 is unbounded.
func NewPool(max int) *Pool {
	return &Pool{max: max, workers: map[string]*entry{}}
}

// Start runs w in its own goroutine. The worker is removed from the pool once
// it finishes.
func (p *Pool) Start(ctx context.Context, w *Worker) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, ok := p.workers[w.ID]; ok {
		return ErrDuplicate
	}
	if p.max > 0 && len(p.workers) >= p.max {
		return ErrPoolFull
	}

	ctx, cancel := context.WithCancel(ctx)
	p.workers[w.ID] = &entry{w: w, cancel: cancel}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		if err := w.Run(ctx); err != nil {
			log.WithError(err).WithField("game", w.ID).Error("game failed")
		}
		p.lock.Lock()
		if e, ok := p.workers[w.ID]; ok && e.w == w {
			delete(p.workers, w.ID)
		}
		p.lock.Unlock()
	}()
	return nil
}

// Get returns the running worker for id.
func (p *Pool) Get(id string) (*Worker, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	e, ok := p.workers[id]
	if !ok {
		return nil, false
	}
	return e.w, true
}

// Stop cancels the worker for id. It reports whether one was running.
func (p *Pool) Stop(id string) bool {
	p.lock.Lock()
	e, ok := p.workers[id]
	p.lock.Unlock()
	if !ok {
		return false
	}
	e.cancel()
	<-e.w.Done()

	p.lock.Lock()
	if p.workers[id] == e {
		delete(p.workers, id)
	}
	p.lock.Unlock()
	return true
}

// StopAll cancels every running worker and waits for them.
func (p *Pool) StopAll() {
	p.lock.Lock()
	for _, e := range p.workers {
		e.cancel()
	}
	p.lock.Unlock()
	p.Wait()
}

// Wait blocks until every started worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

// Len returns the number of running workers.
func (p *Pool) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.workers)
}
