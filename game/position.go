package game

import "fmt"

// Position is a zero based (row, column) coordinate on the board.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Translate returns the position one step away in direction d.
func (p Position) Translate(d Direction) Position {
	return Position{Row: p.Row + d.RowOffset(), Column: p.Column + d.ColumnOffset()}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Column)
}
