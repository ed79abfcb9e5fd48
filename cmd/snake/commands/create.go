package commands

import (
	"fmt"

	"github.com/battlesnakeio/classic/api"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "creates a new game on the snake api",
	Run: func(*cobra.Command, []string) {
		resp := &api.CreateResponse{}
		if err := call("POST", "/games", cr, resp); err != nil {
			log.WithError(err).Fatal("unable to create game")
		}
		fmt.Printf(`{"id": "%s"}`+"\n", resp.ID)
	},
}

var cr = &api.CreateRequest{}

func init() {
	createCmd.Flags().IntVar(&cr.Rows, "rows", 0, "board rows, defaults to the server setting")
	createCmd.Flags().IntVar(&cr.Columns, "columns", 0, "board columns, defaults to the server setting")
	createCmd.Flags().IntVar(&cr.TickMS, "tick-ms", 0, "milliseconds between moves, defaults to the server setting")
	createCmd.Flags().Int64Var(&cr.Seed, "seed", 0, "seed for food placement, random when 0")
}
