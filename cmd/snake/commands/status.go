package commands

import (
	"errors"
	"fmt"

	"github.com/battlesnakeio/classic/api"
	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "gets the status of a game from the snake api",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	Run: func(*cobra.Command, []string) {
		sr, err := getStatus(gameID)
		if err != nil {
			log.WithError(err).WithField("game", gameID).Fatal("unable to get status")
		}
		spew.Dump(sr)
	},
}

var (
	gameID string
)

func init() {
	statusCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to get the status of")
}

func getStatus(id string) (*api.StatusResponse, error) {
	sr := &api.StatusResponse{}
	if err := call("GET", fmt.Sprintf("/games/%s", id), nil, sr); err != nil {
		return nil, err
	}
	return sr, nil
}
