package commands

import (
	"context"
	"io/ioutil"
	"os"
	"time"

	"github.com/battlesnakeio/classic/config"
	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/worker"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	countdownStep = 500 * time.Millisecond
	gameOverPause = 1000 * time.Millisecond
	startMessage  = "PRESS ANY KEY TO START"
)

var (
	playRows    = config.Rows
	playColumns = config.Columns
	playTick    = time.Duration(config.TickMS) * time.Millisecond
	playLogFile = ""
)

func init() {
	playCmd.Flags().IntVar(&playRows, "rows", playRows, "board rows")
	playCmd.Flags().IntVar(&playColumns, "columns", playColumns, "board columns")
	playCmd.Flags().DurationVar(&playTick, "tick", playTick, "time between snake moves")
	playCmd.Flags().StringVarP(&backend, "backend", "b", backend, backendUsage)
	playCmd.Flags().StringVarP(&backendArgs, "backend-args", "a", backendArgs, "options to pass to the backend being used")
	playCmd.Flags().StringVar(&playLogFile, "log-file", playLogFile, "write logs to this file while playing")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "plays snake in the terminal, use the arrow keys to steer",
	Run: func(*cobra.Command, []string) {
		if err := play(); err != nil {
			log.WithError(err).Fatal("game failed")
		}
	},
}

// keyDirections maps arrow keys to headings.
var keyDirections = map[termbox.Key]game.Direction{
	termbox.KeyArrowUp:    game.Up,
	termbox.KeyArrowDown:  game.Down,
	termbox.KeyArrowLeft:  game.Left,
	termbox.KeyArrowRight: game.Right,
}

var runeDirections = map[rune]game.Direction{
	'w': game.Up,
	's': game.Down,
	'a': game.Left,
	'd': game.Right,
}

func eventDirection(ev termbox.Event) (game.Direction, bool) {
	if ev.Type != termbox.EventKey {
		return game.Direction{}, false
	}
	if d, ok := keyDirections[ev.Key]; ok {
		return d, true
	}
	d, ok := runeDirections[ev.Ch]
	return d, ok
}

func isQuit(ev termbox.Event) bool {
	return ev.Type == termbox.EventKey &&
		(ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC)
}

func play() error {
	// The terminal belongs to termbox, so logs only go to a file.
	if playLogFile != "" {
		f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(ioutil.Discard)
	}

	s, err := openStore(backend, backendArgs)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if err = termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	eventQueue := setupEventQueue()
	for {
		quit, err := playRound(s, eventQueue)
		if err != nil || quit {
			return err
		}
	}
}

// playRound runs one session from countdown to game over. It reports whether
// the player asked to quit.
func playRound(s store.Store, eventQueue <-chan termbox.Event) (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := worker.NewSession(ctx, s, worker.Options{
		Rows:         playRows,
		Columns:      playColumns,
		TickInterval: playTick,
	})
	if err != nil {
		return true, err
	}
	frames := make(chan *game.Frame, 1)
	w.OnFrame = func(f *game.Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}

	current := w.Game.Snapshot()
	for _, n := range []string{"3", "2", "1"} {
		if err := render(playRows, playColumns, current, n); err != nil {
			return true, err
		}
		time.Sleep(countdownStep)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	for !current.Over {
		if err := render(playRows, playColumns, current, ""); err != nil {
			return true, err
		}
		select {
		case ev := <-eventQueue:
			if isQuit(ev) {
				cancel()
				<-w.Done()
				return true, nil
			}
			if d, ok := eventDirection(ev); ok {
				w.Move(d)
			}
		case f := <-frames:
			current = f
		case <-w.Done():
			select {
			case f := <-frames:
				current = f
			default:
			}
			if !current.Over {
				return true, <-runErr
			}
		}
	}

	if err := render(playRows, playColumns, current, "GAME OVER"); err != nil {
		return true, err
	}
	if err := <-runErr; err != nil {
		return true, err
	}
	time.Sleep(gameOverPause)
	drainEvents(eventQueue)

	if err := render(playRows, playColumns, current, startMessage); err != nil {
		return true, err
	}
	return isQuit(<-eventQueue), nil
}

func drainEvents(eventQueue <-chan termbox.Event) {
	for {
		select {
		case <-eventQueue:
		default:
			return
		}
	}
}
