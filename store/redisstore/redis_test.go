package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/store/testsuite"
	"github.com/dlsteuer/miniredis"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStore *Store

func TestMain(m *testing.M) {
	// Use REDIS_URL to run against an actual redis instance.
	redisURL := os.Getenv("REDIS_URL")
	var server *miniredis.Miniredis
	if redisURL == "" {
		var err error
		server, err = miniredis.Run()
		if err != nil {
			fmt.Println("unable to start local redis instance")
			os.Exit(1)
		}
		redisURL = fmt.Sprintf("redis://%s", server.Addr())
	}

	s, err := NewStore(redisURL)
	if err != nil {
		fmt.Println("unable to connect redis store", err)
		os.Exit(1)
	}
	testStore = s

	retCode := m.Run()

	testStore.Close()
	if server != nil {
		server.Close()
	}
	os.Exit(retCode)
}

func TestRedisStore(t *testing.T) {
	testsuite.Suite(t, testStore, func() {})
}

func TestNewStoreBadURL(t *testing.T) {
	_, err := NewStore("not a url")
	assert.Error(t, err)
}

func TestCreateGameReplacesFrames(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewV4().String()
	g := &store.Game{ID: id, Rows: 3, Columns: 4, Status: store.GameStatusRunning}

	require.NoError(t, testStore.CreateGame(ctx, g, []*game.Frame{{Turn: 0}, {Turn: 1}}))
	require.NoError(t, testStore.CreateGame(ctx, g, []*game.Frame{{Turn: 0}}))

	frames, err := testStore.ListGameFrames(ctx, id, 10, 0)
	require.NoError(t, err)
	assert.Len(t, frames, 1)

	// The next push continues from the replaced list.
	assert.NoError(t, testStore.PushGameFrame(ctx, id, &game.Frame{Turn: 1}))
}
