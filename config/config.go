package config

import (
	"os"
	"strconv"

	"golang.org/x/time/rate"
)

// Configuration variables. These aren't user facing but useful for tuning the
// details of game sessions and backend performance.
var (
	Rows         = getEnvInt("SNAKE_ROWS", 15)
	Columns      = getEnvInt("SNAKE_COLUMNS", 15)
	TickMS       = atLeast(1, getEnvInt("TICK_MS", 100))
	MaxGames     = getEnvInt("MAX_GAMES", 100)
	MoveRate     = rate.Limit(getEnvInt("MOVE_RPS", 40))
	MoveBurst    = getEnvInt("MOVE_BURST", 10)
	MaxOpenConns = getEnvInt("MAX_OPEN_CONNS", 20)
	MaxIdleConns = getEnvInt("MAX_IDLE_CONNS", 20)
)

func getEnvInt(varName string, defaults int) int {
	val := os.Getenv(varName)
	if val == "" {
		return defaults
	}
	intVal, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return defaults
	}
	return int(intVal)
}

func atLeast(min, v int) int {
	if v < min {
		return min
	}
	return v
}
