package commands

import (
	"fmt"
	"io"

	"github.com/battlesnakeio/classic/store"
	"github.com/battlesnakeio/classic/store/filestore"
	"github.com/battlesnakeio/classic/store/redisstore"
	"github.com/battlesnakeio/classic/store/sqlstore"
	log "github.com/sirupsen/logrus"
)

var (
	backend     = "inmem"
	backendArgs = ""
)

const backendUsage = "game store backend, as one of: [inmem, file, redis, sql]"

// openStore returns the named store backend wrapped with metrics.
func openStore(name, args string) (store.Store, error) {
	var s store.Store
	switch name {
	case "inmem":
		s = store.InMemStore()
	case "file":
		s = filestore.NewFileStore(args)
	case "redis":
		rs, err := redisstore.NewStore(args)
		if err != nil {
			return nil, err
		}
		s = rs
	case "sql":
		ss, err := sqlstore.NewSQLStore(args)
		if err != nil {
			return nil, err
		}
		s = ss
	default:
		return nil, fmt.Errorf("invalid backend %q", name)
	}
	return store.InstrumentStore(s), nil
}

func closeStore(s store.Store) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.WithError(err).Error("unable to close store")
		}
	}
}
