package filestore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/pkg/errors"
)

var openFileReader = func(directory, id string) (io.ReadCloser, error) {
	return os.Open(getFilePath(directory, id))
}

func readLine(r *bufio.Reader, out interface{}) (bool, error) {
	line, err := r.ReadBytes('\n')
	eof := err == io.EOF

	if err != nil && !eof {
		return false, err
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return !eof, nil
	}

	if err = json.Unmarshal(line, out); err != nil {
		return false, err
	}

	return !eof, nil
}

// readArchive replays a game file. A missing file means the game does not
// exist.
func readArchive(directory, id string) (*store.Game, []*game.Frame, error) {
	f, err := openFileReader(directory, id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, store.ErrNotFound
		}
		return nil, nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	var info *store.Game
	frames := []*game.Frame{}
	for more := true; more; {
		rec := record{}
		more, err = readLine(reader, &rec)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to read game file for %s", id)
		}
		if rec.Game != nil {
			info = rec.Game
		}
		if rec.Frame != nil {
			frames = append(frames, rec.Frame)
		}
	}

	if info == nil {
		return nil, nil, errors.Errorf("game file for %s has no game info", id)
	}
	return info, frames, nil
}
