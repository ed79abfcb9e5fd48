package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/battlesnakeio/classic/store"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

// SocketPollInterval is how often a socket checks the store for new frames.
var SocketPollInterval = 50 * time.Millisecond

const socketBatch = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) framesSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if _, err := s.store.GetGame(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("game", id).Error("unable to upgrade connection")
		return
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.WithError(err).WithField("game", id).Warn("unable to close websocket")
		}
	}()

	logger := log.WithField("game", id)
	sent := 0
	for {
		// Read the status before the frames so a game finishing in between
		// still gets its last frames sent.
		g, err := s.store.GetGame(r.Context(), id)
		if err != nil {
			logger.WithError(err).Error("unable to get game")
			return
		}
		frames, err := s.store.ListGameFrames(r.Context(), id, socketBatch, sent)
		if err != nil {
			logger.WithError(err).Error("unable to list frames")
			return
		}

		for _, f := range frames {
			data, err := json.Marshal(f)
			if err != nil {
				logger.WithError(err).Error("unable to marshal frame")
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.WithError(err).Info("socket closed by peer")
				return
			}
		}
		sent += len(frames)

		if len(frames) == 0 && g.Status != store.GameStatusRunning {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
				logger.WithError(err).Warn("unable to send close message")
			}
			return
		}
		if len(frames) < socketBatch {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(SocketPollInterval):
			}
		}
	}
}
