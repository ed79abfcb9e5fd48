package commands

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/battlesnakeio/classic/game"
	"github.com/mattn/go-runewidth"
	termbox "github.com/nsf/termbox-go"
)

const (
	defaultColor = termbox.ColorDefault
	bgColor      = termbox.ColorDefault
	snakeColor   = termbox.ColorGreen
	deadColor    = termbox.ColorRed

	// Every board cell is two terminal columns wide so food glyphs fit.
	cellWidth = 2
	left      = 4
	top       = 2
)

func render(rows, columns int, frame *game.Frame, message string) error {
	if frame == nil {
		return errors.New("received nil frame")
	}
	err := termbox.Clear(defaultColor, defaultColor)
	if err != nil {
		return err
	}

	width := columns * cellWidth
	renderTitle(left, top, frame)
	renderBoard(rows, width, top, left)
	if frame.Food != nil {
		renderFood(left, top, *frame.Food)
	}
	renderSnake(left, top, frame)
	if message != "" {
		tbprint(centered(left, width, message), top+1+rows/2, defaultColor, defaultColor, message)
	}

	return termbox.Flush()
}

// centered returns the column at which msg starts when centered over a span
// of width columns beginning at x.
func centered(x, width int, msg string) int {
	offset := (width - runewidth.StringWidth(msg)) / 2
	if offset < 0 {
		offset = 0
	}
	return x + offset
}

func headGlyph(d game.Direction) rune {
	switch d {
	case game.Up:
		return '▲'
	case game.Down:
		return '▼'
	case game.Left:
		return '◀'
	}
	return '▶'
}

func renderSnake(left, top int, f *game.Frame) {
	color := snakeColor
	if f.Over {
		color = deadColor
	}
	for i, p := range f.Snake {
		x, y := left+p.Column*cellWidth, top+p.Row+1
		if i == 0 {
			termbox.SetCell(x, y, headGlyph(f.Direction), termbox.ColorBlack, color)
			termbox.SetCell(x+1, y, ' ', color, color)
			continue
		}
		termbox.SetCell(x, y, ' ', color, color)
		termbox.SetCell(x+1, y, ' ', color, color)
	}
}

func renderFood(left, top int, p game.Position) {
	termbox.SetCell(left+p.Column*cellWidth, top+p.Row+1, getFoodEmoji(p), defaultColor, bgColor)
}

var foods = map[game.Position]rune{}

func getFoodEmoji(p game.Position) rune {
	r, ok := foods[p]
	if !ok {
		r = randomFoodEmoji()
		foods[p] = r
	}
	return r
}

func randomFoodEmoji() rune {
	f := []rune{
		'🍒',
		'🍍',
		'🍑',
		'🍇',
		'🍏',
		'🍌',
		'🍫',
		'🍭',
		'🍕',
		'🍩',
		'🍗',
		'🍖',
		'🍬',
		'🍤',
		'🍪',
	}

	return f[rand.Intn(len(f))]
}

func renderBoard(rows, width, top, left int) {
	bottom := top + rows + 1
	for i := top + 1; i < bottom; i++ {
		termbox.SetCell(left-1, i, '│', defaultColor, bgColor)
		termbox.SetCell(left+width, i, '│', defaultColor, bgColor)
	}

	termbox.SetCell(left-1, top, '┌', defaultColor, bgColor)
	termbox.SetCell(left-1, bottom, '└', defaultColor, bgColor)
	termbox.SetCell(left+width, top, '┐', defaultColor, bgColor)
	termbox.SetCell(left+width, bottom, '┘', defaultColor, bgColor)

	fill(left, top, width, 1, termbox.Cell{Ch: '─'})
	fill(left, bottom, width, 1, termbox.Cell{Ch: '─'})
}

func title(f *game.Frame) string {
	text := fmt.Sprintf("SCORE %d", f.Score)
	if f.Death != nil {
		text = fmt.Sprintf("%s - %s", text, f.Death.Cause)
	}
	return text
}

func renderTitle(left, top int, f *game.Frame) {
	tbprint(left, top-1, defaultColor, defaultColor, title(f))
}

func fill(x, y, w, h int, cell termbox.Cell) {
	for ly := 0; ly < h; ly++ {
		for lx := 0; lx < w; lx++ {
			termbox.SetCell(x+lx, y+ly, cell.Ch, cell.Fg, cell.Bg)
		}
	}
}

func tbprint(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x += runewidth.RuneWidth(c)
	}
}
