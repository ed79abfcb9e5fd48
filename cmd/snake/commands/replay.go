package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/store/csv"
	"github.com/gorilla/websocket"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	replaySpeed = 200 * time.Millisecond
	replayFile  = ""
)

func init() {
	replayCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to replay")
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "replay a csv archive instead of a game on the api")
	replayCmd.Flags().DurationVar(&replaySpeed, "speed", replaySpeed, "time between replayed frames")
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "replays an existing game from the snake api",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 && len(replayFile) == 0 {
			return errors.New("game id or archive file is required")
		}
		return nil
	},
	Run: func(*cobra.Command, []string) {
		load := loadGame
		if replayFile != "" {
			load = func() (*store.Game, *frameHolder, error) { return loadArchive(replayFile) }
		}
		if err := replayGame(load); err != nil {
			log.WithError(err).WithField("game", gameID).Fatal("replay failed")
		}
	},
}

func moveFrameForwards(frameIndex int, frames *frameHolder) (int, *game.Frame, bool) {
	frameIndex++
	if frameIndex >= frames.count() {
		return frameIndex, nil, true
	}
	return frameIndex, frames.get(frameIndex), false
}

func moveFrameBackwards(frameIndex int, frames *frameHolder) (int, *game.Frame) {
	frameIndex--
	if frameIndex <= 0 {
		frameIndex = 0
	}
	return frameIndex, frames.get(frameIndex)
}

func socketURL(addr, id string) string {
	u := url.URL{Scheme: "ws", Path: fmt.Sprintf("/socket/%s", id)}
	switch {
	case strings.HasPrefix(addr, "https://"):
		u.Scheme = "wss"
		u.Host = strings.TrimPrefix(addr, "https://")
	default:
		u.Host = strings.TrimPrefix(addr, "http://")
	}
	return u.String()
}

// streamFrames reads frames from c into frames until the server closes the
// socket.
func streamFrames(c *websocket.Conn, frames *frameHolder) {
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("failure to close websocket connection")
		}
	}()

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		switch mt {
		case websocket.TextMessage:
			frame := &game.Frame{}
			if err := json.Unmarshal(message, frame); err != nil {
				log.WithError(err).Warn("unmarshal frame failed")
				return
			}
			frames.append(frame)
		default:
			log.WithField("type", mt).Warn("unhandled message type")
		}
	}
}

func loadGame() (*store.Game, *frameHolder, error) {
	status, err := getStatus(gameID)
	if err != nil {
		return nil, nil, err
	}

	u := socketURL(apiAddr, gameID)
	log.WithField("url", u).Info("connecting to socket")
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		return nil, nil, err
	}

	frames := newFrameHolder()
	go streamFrames(c, frames)
	return status.Game, frames, nil
}

// loadArchive replays a csv archive into a frame holder.
func loadArchive(path string) (*store.Game, *frameHolder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	g, moves, err := csv.ReadGame(f)
	if err != nil {
		return nil, nil, err
	}
	replayed, err := csv.Replay(g, moves)
	if err != nil {
		return nil, nil, err
	}
	frames := newFrameHolder()
	for _, frame := range replayed {
		frames.append(frame)
	}
	return g, frames, nil
}

func replayGame(load func() (*store.Game, *frameHolder, error)) error {
	g, frames, err := load()
	if err != nil {
		return err
	}
	currentFrame, err := getInitialFrame(frames)
	if err != nil {
		return err
	}

	if err = termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	draw := func(f *game.Frame) error {
		if f == nil {
			return nil
		}
		return render(g.Rows, g.Columns, f, "")
	}

	eventQueue := setupEventQueue()
	cycle := time.NewTicker(replaySpeed)
	frameIndex := 0
	paused := false
	done := false

	for !done {
		select {
		case ev := <-eventQueue:
			if ev.Type != termbox.EventKey {
				continue
			}
			switch ev.Key {
			case termbox.KeyEsc:
				done = true
			case termbox.KeySpace:
				paused = !paused
			case termbox.KeyArrowLeft:
				paused = true
				frameIndex, currentFrame = moveFrameBackwards(frameIndex, frames)
				if err = draw(currentFrame); err != nil {
					return err
				}
			case termbox.KeyArrowRight:
				paused = true
				frameIndex, currentFrame, done = moveFrameForwards(frameIndex, frames)
				if err = draw(currentFrame); err != nil {
					return err
				}
			}
		case <-cycle.C:
			if paused {
				continue
			}
			if err = draw(currentFrame); err != nil {
				return err
			}
			frameIndex, currentFrame, done = moveFrameForwards(frameIndex, frames)
		}
	}
	cycle.Stop()

	if frameIndex >= frames.count() {
		tbprint(0, 0, defaultColor, defaultColor, "Press any key to exit...")
		if err = termbox.Flush(); err != nil {
			return err
		}
		<-eventQueue
	}
	return nil
}

func setupEventQueue() <-chan termbox.Event {
	eventQueue := make(chan termbox.Event)
	go func(ev chan<- termbox.Event) {
		for {
			ev <- termbox.PollEvent()
		}
	}(eventQueue)
	return eventQueue
}

func getInitialFrame(frames *frameHolder) (*game.Frame, error) {
	select {
	case f := <-frames.initialFrame():
		return f, nil
	case <-time.After(time.Second):
		return nil, errors.New("unable to find initial frame for game")
	}
}
