package csv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
)

var errShortRow = errors.New("csv: short row")

// readMetadata extracts the metadata from the json on the first line. The
// line is expected to start with a '#' so that it is ignored by standard CSV
// tools.
func readMetadata(reader *bufio.Reader) (*store.Game, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	if len(line) < 2 || line[0] != '#' {
		return nil, errors.New("csv: invalid metadata line")
	}

	g := &store.Game{}
	err = json.Unmarshal(line[1:], g)
	return g, err
}

func parseMove(code string) (game.Direction, error) {
	for d, c := range moveCodes {
		if c == code {
			return d, nil
		}
	}
	return game.Direction{}, fmt.Errorf("csv: unknown move %q", code)
}

func parseLine(line string, turn int) (game.Direction, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 || fields[1] == "" {
		return game.Direction{}, errShortRow
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Direction{}, errShortRow
	}
	if n != turn {
		return game.Direction{}, store.ErrInvalidSequence
	}
	return parseMove(fields[1])
}

func readMoves(reader *bufio.Reader) ([]game.Direction, error) {
	moves := []game.Direction{}
	eof := false

	for !eof {
		line, err := reader.ReadString('\n')
		eof = err == io.EOF
		if err != nil && !eof {
			return nil, err
		}
		if eof && strings.TrimSpace(line) == "" {
			break
		}

		d, err := parseLine(line, len(moves)+1)

		// A short last line means the writer was interrupted in the middle of
		// a turn. Resume from the previous turn.
		if err == errShortRow && eof {
			break
		} else if err != nil {
			return nil, err
		}

		moves = append(moves, d)
	}

	return moves, nil
}

// ReadGame reads an archive written by WriteGame.
func ReadGame(r io.Reader) (*store.Game, []game.Direction, error) {
	reader := bufio.NewReader(r)

	g, err := readMetadata(reader)
	if err != nil {
		return nil, nil, err
	}

	// Skip a line because the CSV column headers are not needed
	if _, err = reader.ReadString('\n'); err != nil && err != io.EOF {
		return nil, nil, err
	}

	moves, err := readMoves(reader)
	if err != nil {
		return nil, nil, err
	}
	return g, moves, nil
}

// Replay executes all the moves to derive the frame at each turn.
func Replay(g *store.Game, moves []game.Direction) ([]*game.Frame, error) {
	sg, err := game.New(g.Rows, g.Columns, game.WithSeed(g.Seed))
	if err != nil {
		return nil, err
	}

	frames := []*game.Frame{sg.Snapshot()}
	for i, d := range moves {
		if sg.Over() {
			return nil, fmt.Errorf("csv: move on turn %d after game over", i+1)
		}
		sg.ChangeDirection(d)
		sg.Step()
		frames = append(frames, sg.Snapshot())
	}
	return frames, nil
}
