package commands

import (
	"sync"

	"github.com/battlesnakeio/classic/game"
)

type frameHolder struct {
	sync.RWMutex
	frames []*game.Frame
	ffc    chan *game.Frame
}

func newFrameHolder() *frameHolder {
	return &frameHolder{ffc: make(chan *game.Frame, 1)}
}

func (fh *frameHolder) append(frame *game.Frame) {
	fh.Lock()
	defer fh.Unlock()

	if len(fh.frames) == 0 {
		fh.ffc <- frame
		close(fh.ffc)
	}

	fh.frames = append(fh.frames, frame)
}

func (fh *frameHolder) get(index int) *game.Frame {
	fh.RLock()
	defer fh.RUnlock()

	if index < 0 || index >= len(fh.frames) {
		return nil
	}

	return fh.frames[index]
}

// initialFrame yields the first appended frame.
func (fh *frameHolder) initialFrame() <-chan *game.Frame {
	return fh.ffc
}

func (fh *frameHolder) count() int {
	fh.RLock()
	defer fh.RUnlock()

	return len(fh.frames)
}
