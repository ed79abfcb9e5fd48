package game

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Direction is one of the four unit offsets the snake can travel in.
type Direction struct {
	rowOffset    int
	columnOffset int
}

// The four headings. Rows grow downwards, so Up has a negative row offset.
var (
	Up    = Direction{rowOffset: -1, columnOffset: 0}
	Down  = Direction{rowOffset: 1, columnOffset: 0}
	Left  = Direction{rowOffset: 0, columnOffset: -1}
	Right = Direction{rowOffset: 0, columnOffset: 1}
)

// Directions lists every heading in clockwise order starting at Up.
var Directions = []Direction{Up, Right, Down, Left}

// RowOffset returns the row delta of a single step.
func (d Direction) RowOffset() int { return d.rowOffset }

// ColumnOffset returns the column delta of a single step.
func (d Direction) ColumnOffset() int { return d.columnOffset }

// Opposite returns the heading pointing the other way.
func (d Direction) Opposite() Direction {
	return Direction{rowOffset: -d.rowOffset, columnOffset: -d.columnOffset}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d,%d)", d.rowOffset, d.columnOffset)
}

// ParseDirection converts a move name ("up", "down", "left", "right") into a
// Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Direction{}, errors.Errorf("game: unknown direction %q", s)
}

// MarshalJSON encodes the direction as its move name. The zero Direction
// encodes as null.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == (Direction{}) {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a move name.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Direction{}
		return nil
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
