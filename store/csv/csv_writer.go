// Package csv archives a game as the moves taken on each turn. The archive
// looks like this, with the game json on the first line:
//
//	#{"id":"1234","rows":15,"columns":15,"status":"complete","seed":42,...}
//	turn,move
//	1,r
//	2,u
//	3,l
//
// Frames are recovered by replaying the moves on a game with the same seed.
package csv

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
)

var moveCodes = map[game.Direction]string{
	game.Up:    "u",
	game.Down:  "d",
	game.Left:  "l",
	game.Right: "r",
}

func writeMetadata(w io.Writer, g *store.Game) error {
	metaJSON, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "#"+string(metaJSON)+"\n")
	return err
}

func writeRow(w io.Writer, turn int, d game.Direction) error {
	code, ok := moveCodes[d]
	if !ok {
		return fmt.Errorf("csv: turn %d has no move", turn)
	}
	_, err := io.WriteString(w, strconv.Itoa(turn)+","+code+"\n")
	return err
}

// WriteGame archives g and the moves recorded in frames. frames must start at
// turn 0, the opening frame carries no move and is not written.
func WriteGame(w io.Writer, g *store.Game, frames []*game.Frame) error {
	if err := store.NextTurn(-1, frames...); err != nil {
		return err
	}

	// First line: commented out metadata.
	if err := writeMetadata(w, g); err != nil {
		return err
	}

	// Second line: column headers
	if _, err := io.WriteString(w, "turn,move\n"); err != nil {
		return err
	}

	for _, f := range frames {
		if f.Turn == 0 {
			continue
		}
		if err := writeRow(w, f.Turn, f.Direction); err != nil {
			return err
		}
	}
	return nil
}
