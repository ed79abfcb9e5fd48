package filestore

import (
	"encoding/json"
	"os"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/pkg/errors"
)

var openFileWriter = appendOnlyFileWriter

type writer interface {
	WriteString(s string) (int, error)
	Close() error
}

// record is a single line of a game archive. Game lines hold the latest game
// info (the last one wins), frame lines hold one tick each.
type record struct {
	Game  *store.Game `json:"game,omitempty"`
	Frame *game.Frame `json:"frame,omitempty"`
}

// appendOnlyFileWriter opens the archive for appending. With replace set any
// existing archive is truncated first.
func appendOnlyFileWriter(directory, id string, replace bool) (writer, error) {
	if err := os.MkdirAll(directory, 0775); err != nil {
		return nil, errors.Wrap(err, "unable to create game directory")
	}

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	if replace {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(getFilePath(directory, id), flags, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open game file for %s", id)
	}
	return f, nil
}

func writeLine(w writer, data interface{}) error {
	j, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.WriteString(string(j) + "\n")
	return err
}

func writeGameInfo(w writer, g *store.Game) error {
	return writeLine(w, record{Game: g})
}

func writeFrame(w writer, f *game.Frame) error {
	return writeLine(w, record{Frame: f})
}
