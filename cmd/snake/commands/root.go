package commands

import (
	"fmt"
	"os"

	"github.com/battlesnakeio/classic/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "snake",
	Short:   "snake plays the classic snake game in a terminal or serves it over http",
	Version: version.Version,
	PersistentPreRun: func(c *cobra.Command, args []string) {
		if err := setupLogging(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
	Run: func(c *cobra.Command, args []string) {
		playCmd.Run(c, args)
	},
}

var (
	apiAddr  = "http://localhost:3005"
	logLevel = "info"
	logJSON  = false
)

func setupLogging() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if logJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

// Execute runs the root command
func Execute() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", apiAddr, "address of the api server")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level, as one of: [debug, info, warn, error]")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", logJSON, "log as json")
	rootCmd.Flags().AddFlagSet(playCmd.Flags())

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
