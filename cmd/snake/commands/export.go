package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/battlesnakeio/classic/api"
	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store/csv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const exportPageSize = 100

var exportFile string

func init() {
	exportCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to export")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "file to write the csv archive to, stdout when empty")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "exports a game from the snake api as a csv move archive",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	Run: func(*cobra.Command, []string) {
		var out io.Writer = os.Stdout
		if exportFile != "" {
			f, err := os.Create(exportFile)
			if err != nil {
				log.WithError(err).Fatal("unable to create archive")
			}
			defer f.Close()
			out = f
		}
		if err := exportGame(out, gameID); err != nil {
			log.WithError(err).WithField("game", gameID).Fatal("export failed")
		}
	},
}

func listAllFrames(id string) ([]*game.Frame, error) {
	var frames []*game.Frame
	for {
		page := &api.FramesResponse{}
		path := fmt.Sprintf("/games/%s/frames?offset=%d&limit=%d", id, len(frames), exportPageSize)
		if err := call("GET", path, nil, page); err != nil {
			return nil, err
		}
		frames = append(frames, page.Frames...)
		if len(page.Frames) < exportPageSize {
			return frames, nil
		}
	}
}

func exportGame(w io.Writer, id string) error {
	status, err := getStatus(id)
	if err != nil {
		return err
	}
	frames, err := listAllFrames(id)
	if err != nil {
		return err
	}
	return csv.WriteGame(w, status.Game, frames)
}
