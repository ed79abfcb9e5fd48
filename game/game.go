// Package game implements the classic single player snake board. A Game owns
// the grid, the snake body, the heading, the score and the game over flag and
// advances by exactly one tick per Step call.
//
// A Game is not safe for concurrent use. The worker package shows the
// intended driver: one goroutine interleaving ticks and direction changes.
package game

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

const (
	// InitialLength is the number of segments a new snake starts with.
	InitialLength = 3
	// MinColumns is the narrowest board the initial snake fits on; it is
	// laid out in columns 1 to 3.
	MinColumns = InitialLength + 1
	// MinRows is the shortest board a game can be played on.
	MinRows = 1
	// MaxCells caps rows*columns so a board always fits in memory.
	MaxCells = 1 << 20
)

// ErrInvalidDimensions is returned by New when the board cannot hold the
// initial snake or has more than MaxCells cells.
var ErrInvalidDimensions = errors.New("game: invalid board dimensions")

// Outcome describes what a single Step did.
type Outcome string

const (
	// OutcomeMoved means the snake advanced into an empty cell.
	OutcomeMoved Outcome = "moved"
	// OutcomeAte means the snake advanced onto food and grew by one.
	OutcomeAte Outcome = "ate"
	// OutcomeCollided means the snake hit a wall or itself; the game is over.
	OutcomeCollided Outcome = "collided"
	// OutcomeIgnored means the game was already over and nothing changed.
	OutcomeIgnored Outcome = "ignored"
)

// Death records when and why the snake died.
type Death struct {
	Turn  int    `json:"turn"`
	Cause string `json:"cause"`
}

// Game is a single round of snake.
type Game struct {
	grid      *Grid
	snake     *body
	direction Direction
	score     int
	turn      int
	over      bool
	death     *Death
	rand      *rand.Rand
}

// Option configures a Game at construction.
type Option func(*Game)

// WithRand makes food placement draw from r.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rand = r }
}

// WithSeed makes food placement deterministic.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// New creates a board of the given size with a three segment snake in the
// middle row, heading right, and a single piece of food.
func New(rows, columns int, opts ...Option) (*Game, error) {
	if rows < MinRows || columns < MinColumns || rows > MaxCells/columns {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d", rows, columns)
	}
	g := &Game{
		grid:      NewGrid(rows, columns),
		snake:     newBody(initialBodyCapacity),
		direction: Right,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rand == nil {
		g.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g.addSnake()
	g.addFood()
	return g, nil
}

// addSnake lays the initial snake in the middle row, columns 1 to 3. With an
// even number of rows the snake sits slightly closer to the top.
func (g *Game) addSnake() {
	row := g.grid.Rows() / 2
	for column := 1; column <= InitialLength; column++ {
		g.addHead(Position{Row: row, Column: column})
	}
}

func (g *Game) addHead(p Position) {
	g.snake.PushFront(p)
	g.grid.Set(p, Snake)
}

func (g *Game) removeTail() {
	tail := g.snake.PopBack()
	g.grid.Set(tail, Empty)
}

// ChangeDirection sets the heading used by the next Step. There is no guard
// against reversing into the neck; doing so ends the game on the next tick.
func (g *Game) ChangeDirection(d Direction) {
	g.direction = d
}

// willHit classifies the cell the head would move into. The current tail
// counts as empty because it vacates its cell during the same step.
func (g *Game) willHit(p Position) Cell {
	if !g.grid.Inside(p) {
		return Outside
	}
	if p == g.Tail() {
		return Empty
	}
	return g.grid.At(p)
}

// Step advances the game by one tick and reports what happened. Once the game
// is over Step changes nothing.
func (g *Game) Step() Outcome {
	if g.over {
		return OutcomeIgnored
	}

	next := g.Head().Translate(g.direction)
	hit := g.willHit(next)
	g.turn++

	switch hit {
	case Outside, Snake:
		g.over = true
		g.death = &Death{Turn: g.turn, Cause: deathCause(hit)}
		return OutcomeCollided
	case Food:
		g.addHead(next)
		g.score++
		g.addFood()
		return OutcomeAte
	default:
		g.removeTail()
		g.addHead(next)
		return OutcomeMoved
	}
}

// Head returns the leading segment.
func (g *Game) Head() Position { return g.snake.Front() }

// Tail returns the trailing segment.
func (g *Game) Tail() Position { return g.snake.Back() }

// Body returns a copy of the snake, head first.
func (g *Game) Body() []Position { return g.snake.Slice() }

// Len returns the number of snake segments.
func (g *Game) Len() int { return g.snake.Len() }

// Grid returns a snapshot of the board.
func (g *Game) Grid() *Grid { return g.grid.Clone() }

// Cell returns the content of a single position without copying the board.
func (g *Game) Cell(p Position) Cell { return g.grid.At(p) }

// Direction returns the current heading.
func (g *Game) Direction() Direction { return g.direction }

// Score returns the number of food pieces eaten.
func (g *Game) Score() int { return g.score }

// Turn returns the number of ticks played.
func (g *Game) Turn() int { return g.turn }

// Over reports whether the snake has died.
func (g *Game) Over() bool { return g.over }

// Death returns the cause of death, or nil while the snake is alive.
func (g *Game) Death() *Death {
	if g.death == nil {
		return nil
	}
	d := *g.death
	return &d
}

// Rows returns the board height.
func (g *Game) Rows() int { return g.grid.Rows() }

// Columns returns the board width.
func (g *Game) Columns() int { return g.grid.Columns() }
