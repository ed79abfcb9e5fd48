package game

// emptyPositions returns every empty cell on the board.
func (g *Game) emptyPositions() []Position {
	return g.grid.Positions(Empty)
}

// addFood places a piece of food on a random empty cell. A full board gets no
// food; the game simply continues without any.
func (g *Game) addFood() {
	open := g.emptyPositions()
	if len(open) == 0 {
		return
	}
	p := open[g.rand.Intn(len(open))]
	g.grid.Set(p, Food)
}

// Food returns the position of the food, if the board has any.
func (g *Game) Food() (Position, bool) {
	food := g.grid.Positions(Food)
	if len(food) == 0 {
		return Position{}, false
	}
	return food[0], true
}
