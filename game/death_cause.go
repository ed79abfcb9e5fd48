package game

const (
	// DeathCauseWallCollision is when the snake runs off the board
	DeathCauseWallCollision = "wall-collision"
	// DeathCauseSelfCollision is when the snake runs into its own body
	DeathCauseSelfCollision = "snake-self-collision"
)

func deathCause(hit Cell) string {
	if hit == Outside {
		return DeathCauseWallCollision
	}
	return DeathCauseSelfCollision
}
