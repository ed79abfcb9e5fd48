package game

// Frame is the state of a game after a tick. Frames are what gets stored,
// streamed and replayed.
type Frame struct {
	Turn      int        `json:"turn"`
	Score     int        `json:"score"`
	Direction Direction  `json:"direction"`
	Snake     []Position `json:"snake"`
	Food      *Position  `json:"food,omitempty"`
	Over      bool       `json:"over"`
	Death     *Death     `json:"death,omitempty"`
}

// Snapshot captures the current state of g.
func (g *Game) Snapshot() *Frame {
	f := &Frame{
		Turn:      g.turn,
		Score:     g.score,
		Direction: g.direction,
		Snake:     g.Body(),
		Over:      g.over,
		Death:     g.Death(),
	}
	if p, ok := g.Food(); ok {
		f.Food = &p
	}
	return f
}

// Head returns the leading segment of the recorded snake.
func (f *Frame) Head() (Position, bool) {
	if len(f.Snake) == 0 {
		return Position{}, false
	}
	return f.Snake[0], true
}

// Cells rebuilds a board of the given size from the frame. Segments and food
// outside the board are dropped.
func (f *Frame) Cells(rows, columns int) *Grid {
	grid := NewGrid(rows, columns)
	for _, p := range f.Snake {
		grid.Set(p, Snake)
	}
	if f.Food != nil {
		grid.Set(*f.Food, Food)
	}
	return grid
}
