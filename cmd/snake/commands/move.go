package commands

import (
	"errors"
	"fmt"

	"github.com/battlesnakeio/classic/api"
	"github.com/battlesnakeio/classic/game"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var moveDirection string

func init() {
	moveCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to steer")
	moveCmd.Flags().StringVarP(&moveDirection, "direction", "d", "", "direction, as one of: [up, down, left, right]")
}

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "changes the direction of a running game",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		_, err := game.ParseDirection(moveDirection)
		return err
	},
	Run: func(*cobra.Command, []string) {
		path := fmt.Sprintf("/games/%s/move", gameID)
		if err := call("POST", path, &api.MoveRequest{Direction: moveDirection}, nil); err != nil {
			log.WithError(err).WithField("game", gameID).Fatal("unable to move")
		}
	},
}
