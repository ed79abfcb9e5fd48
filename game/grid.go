package game

// Cell is the content of a single board position.
type Cell int

const (
	// Empty is the zero value, a freshly allocated grid is all Empty.
	Empty Cell = iota
	Snake
	Food
	// Outside is never stored in a grid. It is what a lookup beyond the
	// board edges reports.
	Outside
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Snake:
		return "snake"
	case Food:
		return "food"
	case Outside:
		return "outside"
	}
	return "unknown"
}

// Grid is a fixed size board of cells stored row major.
type Grid struct {
	rows    int
	columns int
	cells   []Cell
}

// NewGrid allocates an empty board.
func NewGrid(rows, columns int) *Grid {
	return &Grid{
		rows:    rows,
		columns: columns,
		cells:   make([]Cell, rows*columns),
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the number of columns.
func (g *Grid) Columns() int { return g.columns }

// Inside reports whether p lies on the board.
func (g *Grid) Inside(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Column >= 0 && p.Column < g.columns
}

// At returns the cell at p, or Outside when p is off the board.
func (g *Grid) At(p Position) Cell {
	if !g.Inside(p) {
		return Outside
	}
	return g.cells[p.Row*g.columns+p.Column]
}

// Set stores c at p. Positions off the board are ignored.
func (g *Grid) Set(p Position, c Cell) {
	if !g.Inside(p) {
		return
	}
	g.cells[p.Row*g.columns+p.Column] = c
}

// Count returns how many cells hold c.
func (g *Grid) Count(c Cell) int {
	n := 0
	for _, v := range g.cells {
		if v == c {
			n++
		}
	}
	return n
}

// Positions returns every position holding c, scanning row by row.
func (g *Grid) Positions(c Cell) []Position {
	var out []Position
	for i, v := range g.cells {
		if v == c {
			out = append(out, Position{Row: i / g.columns, Column: i % g.columns})
		}
	}
	return out
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, columns: g.columns, cells: cells}
}
