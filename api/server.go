// Package api exposes sessions over HTTP: creating games, steering them and
// streaming their frames over a websocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/battlesnakeio/classic/config"
	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/worker"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Server is the API server.
type Server struct {
	hs    *http.Server
	store store.Store
	pool  *worker.Pool

	moveRate  rate.Limit
	moveBurst int
	limitLock sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New creates a new api server listening on addr.
func New(addr string, s store.Store, p *worker.Pool) *Server {
	srv := &Server{
		store:     s,
		pool:      p,
		moveRate:  config.MoveRate,
		moveBurst: config.MoveBurst,
		limiters:  map[string]*rate.Limiter{},
	}

	router := httprouter.New()
	router.POST("/games", srv.createGame)
	router.GET("/games/:id", srv.status)
	router.DELETE("/games/:id", srv.stopGame)
	router.POST("/games/:id/move", srv.move)
	router.GET("/games/:id/frames", srv.listFrames)
	router.GET("/socket/:id", srv.framesSocket)

	srv.hs = &http.Server{
		Addr:    addr,
		Handler: cors.Default().Handler(router),
	}
	return srv
}

// Handler returns the http handler serving the api.
func (s *Server) Handler() http.Handler { return s.hs.Handler }

// WaitForExit starts up the server and blocks until the server shuts down.
func (s *Server) WaitForExit() error {
	log.WithField("listen", s.hs.Addr).Info("snake api listening")
	err := s.hs.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for open ones to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

// CreateRequest is the body accepted by POST /games. Zero values fall back
// to the configured defaults.
type CreateRequest struct {
	Rows    int   `json:"rows"`
	Columns int   `json:"columns"`
	TickMS  int   `json:"tick_ms"`
	Seed    int64 `json:"seed"`
}

// CreateResponse is returned by POST /games.
type CreateResponse struct {
	ID string `json:"id"`
}

// StatusResponse is returned by GET /games/:id.
type StatusResponse struct {
	Game      *store.Game `json:"game"`
	LastFrame *game.Frame `json:"last_frame"`
}

// MoveRequest is the body accepted by POST /games/:id/move.
type MoveRequest struct {
	Direction string `json:"direction"`
}

// FramesResponse is returned by GET /games/:id/frames.
type FramesResponse struct {
	Frames []*game.Frame `json:"frames"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := CreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid create request"))
		return
	}
	if req.Rows == 0 {
		req.Rows = config.Rows
	}
	if req.Columns == 0 {
		req.Columns = config.Columns
	}
	if req.TickMS <= 0 {
		req.TickMS = config.TickMS
	}

	wk, err := worker.NewSession(r.Context(), s.store, worker.Options{
		Rows:         req.Rows,
		Columns:      req.Columns,
		TickInterval: time.Duration(req.TickMS) * time.Millisecond,
		Seed:         req.Seed,
	})
	if err != nil {
		if cause := errors.Cause(err); cause == game.ErrInvalidDimensions || cause == worker.ErrInvalidTick {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.pool.Start(context.Background(), wk); err != nil {
		if endErr := s.store.SetGameStatus(r.Context(), wk.ID, store.GameStatusError); endErr != nil {
			log.WithError(endErr).WithField("game", wk.ID).Error("unable to end unstarted game")
		}
		if err == worker.ErrPoolFull {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	go func() {
		<-wk.Done()
		s.forgetLimiter(wk.ID)
	}()

	log.WithFields(log.Fields{
		"game":    wk.ID,
		"rows":    req.Rows,
		"columns": req.Columns,
	}).Info("created game")
	writeJSON(w, http.StatusOK, &CreateResponse{ID: wk.ID})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	g, err := s.store.GetGame(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	frames, err := s.store.ListGameFrames(r.Context(), id, 1, -1)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := &StatusResponse{Game: g}
	if len(frames) > 0 {
		resp.LastFrame = frames[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stopGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !s.pool.Stop(id) {
		writeError(w, http.StatusNotFound, errors.New("game is not running"))
		return
	}
	s.forgetLimiter(id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req := MoveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid move request"))
		return
	}
	d, err := game.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := ps.ByName("id")
	wk, ok := s.pool.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("game is not running"))
		return
	}
	allowed := s.limiter(id).Allow()
	select {
	case <-wk.Done():
		s.forgetLimiter(id)
		writeError(w, http.StatusNotFound, errors.New("game is not running"))
		return
	default:
	}
	if !allowed || !wk.Move(d) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many moves"))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listFrames(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	frames, err := s.store.ListGameFrames(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if frames == nil {
		frames = []*game.Frame{}
	}
	writeJSON(w, http.StatusOK, &FramesResponse{Frames: frames})
}

func (s *Server) limiter(id string) *rate.Limiter {
	s.limitLock.Lock()
	defer s.limitLock.Unlock()
	l, ok := s.limiters[id]
	if !ok {
		l = rate.NewLimiter(s.moveRate, s.moveBurst)
		s.limiters[id] = l
	}
	return l
}

func (s *Server) forgetLimiter(id string) {
	s.limitLock.Lock()
	delete(s.limiters, id)
	s.limitLock.Unlock()
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return i, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("unable to write response")
	}
}
