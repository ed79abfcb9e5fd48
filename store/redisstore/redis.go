// Package redisstore is a store backed by redis. A game is kept under
// game:<id>, its status under game:<id>:status and its frames in the list
// game:<id>:frames, where list index equals turn.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const (
	scriptOK          = 1
	scriptNotFound    = -1
	scriptBadSequence = -2
)

// createGame writes the game, resets its status and replaces its frames.
var createGame = redis.NewScript(`
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
redis.call("DEL", KEYS[3])
for i = 3, #ARGV do
	redis.call("RPUSH", KEYS[3], ARGV[i])
end
return 1
`)

// pushFrames appends frames when the first one continues the list.
var pushFrames = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
if tonumber(ARGV[1]) ~= redis.call("LLEN", KEYS[2]) then
	return -2
end
for i = 2, #ARGV do
	redis.call("RPUSH", KEYS[2], ARGV[i])
end
return 1
`)

// setStatus updates the status of an existing game.
var setStatus = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
redis.call("SET", KEYS[2], ARGV[1])
return 1
`)

// Store is a redis backed store.Store.
type Store struct {
	client *redis.Client
}

// NewStore will create a new instance of an underlying redis client, so it should not be re-created across "threads"
// - connectURL see: github.com/go-redis/redis/options.go for URL specifics
// The underlying redis client will be immediately tested for connectivity, so don't call this until you know redis can connect.
// Returns a new instance OR an error if unable (meaning an issue connecting to your redis URL)
func NewStore(connectURL string) (*Store, error) {
	o, err := redis.ParseURL(connectURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse redis URL")
	}

	client := redis.NewClient(o)

	// Validate it's connected
	err = client.Ping().Err()
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	return &Store{client: client}, nil
}

// Close closes the underlying redis client.
func (rs *Store) Close() error {
	return rs.client.Close()
}

func gameKey(id string) string   { return fmt.Sprintf("game:%s", id) }
func statusKey(id string) string { return fmt.Sprintf("game:%s:status", id) }
func framesKey(id string) string { return fmt.Sprintf("game:%s:frames", id) }

func encodeFrames(frames []*game.Frame) ([]interface{}, error) {
	out := make([]interface{}, 0, len(frames))
	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		out = append(out, string(data))
	}
	return out, nil
}

func scriptResult(cmd *redis.Cmd) error {
	res, err := cmd.Result()
	if err != nil {
		return errors.Wrap(err, "redis script failed")
	}
	code, ok := res.(int64)
	if !ok {
		return errors.Errorf("unexpected redis script result %v", res)
	}
	switch code {
	case scriptOK:
		return nil
	case scriptNotFound:
		return store.ErrNotFound
	case scriptBadSequence:
		return store.ErrInvalidSequence
	}
	return errors.Errorf("unexpected redis script result %d", code)
}

// CreateGame will insert a game with the initial game frames.
func (rs *Store) CreateGame(ctx context.Context, g *store.Game, frames []*game.Frame) error {
	if err := store.NextTurn(-1, frames...); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	encoded, err := encodeFrames(frames)
	if err != nil {
		return err
	}
	args := append([]interface{}{string(data), string(g.Status)}, encoded...)
	return scriptResult(createGame.Run(rs.client,
		[]string{gameKey(g.ID), statusKey(g.ID), framesKey(g.ID)}, args...))
}

// PushGameFrame will push a game frame onto the list of frames.
func (rs *Store) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	encoded, err := encodeFrames([]*game.Frame{f})
	if err != nil {
		return err
	}
	args := append([]interface{}{f.Turn}, encoded...)
	return scriptResult(pushFrames.Run(rs.client,
		[]string{gameKey(id), framesKey(id)}, args...))
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (rs *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	if err := rs.requireGame(id); err != nil {
		return nil, err
	}
	n, err := rs.client.LLen(framesKey(id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to count frames")
	}
	start, end, ok := store.PageBounds(int(n), limit, offset)
	if !ok {
		return nil, nil
	}

	values, err := rs.client.LRange(framesKey(id), int64(start), int64(end-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list frames")
	}
	frames := make([]*game.Frame, 0, len(values))
	for _, v := range values {
		f := &game.Frame{}
		if err := json.Unmarshal([]byte(v), f); err != nil {
			return nil, errors.Wrap(err, "unable to decode frame")
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// GetGame will fetch the game.
func (rs *Store) GetGame(ctx context.Context, id string) (*store.Game, error) {
	values, err := rs.client.MGet(gameKey(id), statusKey(id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get game")
	}
	data, ok := values[0].(string)
	if !ok {
		return nil, store.ErrNotFound
	}
	g := &store.Game{}
	if err := json.Unmarshal([]byte(data), g); err != nil {
		return nil, errors.Wrap(err, "unable to decode game")
	}
	if status, ok := values[1].(string); ok {
		g.Status = store.GameStatus(status)
	}
	return g, nil
}

// SetGameStatus is used to set a specific game status. This operation
// is atomic.
func (rs *Store) SetGameStatus(ctx context.Context, id string, status store.GameStatus) error {
	return scriptResult(setStatus.Run(rs.client,
		[]string{gameKey(id), statusKey(id)}, string(status)))
}

func (rs *Store) requireGame(id string) error {
	err := rs.client.Get(gameKey(id)).Err()
	if err == redis.Nil {
		return store.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "unable to get game")
	}
	return nil
}
