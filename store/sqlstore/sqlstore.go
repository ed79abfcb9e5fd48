// Package sqlstore is a store backed by postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq" // Import pq driver.

	"github.com/battlesnakeio/classic/config"
	"github.com/battlesnakeio/classic/game"
	"github.com/battlesnakeio/classic/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const migrations = `
CREATE TABLE IF NOT EXISTS games (
	id VARCHAR(255) PRIMARY KEY,
	status VARCHAR(32) NOT NULL,
	value jsonb,
	created timestamp default now()
);
CREATE TABLE IF NOT EXISTS game_frames (
	id VARCHAR(255),
	turn INTEGER,
	value jsonb,
	PRIMARY KEY (id, turn)
);
`

// NewSQLStore returns a new store using a postgres database.
func NewSQLStore(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	if err = db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	_, err = db.ExecContext(ctx, migrations)
	if err != nil {
		return nil, errors.Wrap(err, "unable to run migrations")
	}
	return &Store{db: db}, nil
}

// Store represents an SQL store.
type Store struct {
	db *sql.DB
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// transact is a transaction wrapper, helps avoid failed to close connections.
func (s *Store) transact(
	ctx context.Context, txFunc func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			// err is non-nil; don't change it
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
		} else {
			err = tx.Commit() // err is nil; if Commit returns error update err
		}
	}()
	err = txFunc(tx)
	return err
}

// SetGameStatus is used to set a specific game status. This operation
// should be atomic.
func (s *Store) SetGameStatus(
	ctx context.Context, id string, status store.GameStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateGame will insert a game with the initial game frames.
func (s *Store) CreateGame(
	ctx context.Context, g *store.Game, frames []*game.Frame) error {
	if err := store.NextTurn(-1, frames...); err != nil {
		return err
	}
	return s.transact(ctx, func(tx *sql.Tx) error {
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		// Upsert games.
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, status, value) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET status=$2, value=$3`,
			g.ID, string(g.Status), data,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM game_frames WHERE id=$1`, g.ID); err != nil {
			return err
		}
		return s.pushFrames(ctx, tx, g.ID, frames...)
	})
}

func (s *Store) pushFrames(
	ctx context.Context, tx *sql.Tx, id string, frames ...*game.Frame) error {
	r := tx.QueryRowContext(
		ctx, "SELECT MAX(turn) FROM game_frames where id=$1", id)

	var last sql.NullInt64
	if err := r.Scan(&last); err != nil {
		if err != sql.ErrNoRows {
			return err
		}
	}
	i := -1 // Nothing exists.
	if last.Valid {
		i = int(last.Int64)
	}
	if err := store.NextTurn(i, frames...); err != nil {
		return err
	}

	for _, frame := range frames {
		frameData, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx, `INSERT INTO game_frames (id, turn, value) VALUES ($1, $2, $3)`,
			id, frame.Turn, frameData,
		); err != nil {
			return err
		}
	}
	return nil
}

// PushGameFrame will push a game frame onto the list of frames.
func (s *Store) PushGameFrame(
	ctx context.Context, id string, f *game.Frame) error {
	return s.transact(ctx, func(tx *sql.Tx) error {
		r := tx.QueryRowContext(ctx,
			`SELECT id FROM games WHERE id=$1 FOR UPDATE`, id)
		var found string
		if err := r.Scan(&found); err != nil {
			if err == sql.ErrNoRows {
				return store.ErrNotFound
			}
			return err
		}
		return s.pushFrames(ctx, tx, id, f)
	})
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (s *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	if _, err := s.GetGame(ctx, id); err != nil {
		return nil, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_frames WHERE id=$1`, id).Scan(&n); err != nil {
		return nil, err
	}
	start, end, ok := store.PageBounds(n, limit, offset)
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM game_frames WHERE id=$1 ORDER BY turn ASC LIMIT $2 OFFSET $3`,
		id, end-start, start,
	)
	if err != nil {
		return nil, err
	}

	var frames []*game.Frame
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		frame := &game.Frame{}
		if err := json.Unmarshal(data, frame); err != nil {
			return nil, err
		}

		frames = append(frames, frame)
	}

	return frames, rows.Err()
}

// GetGame will fetch the game.
func (s *Store) GetGame(c context.Context, id string) (*store.Game, error) {
	r := s.db.QueryRowContext(c, "SELECT status, value FROM games WHERE id=$1", id)

	var status string
	var data []byte
	if err := r.Scan(&status, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	g := &store.Game{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	g.Status = store.GameStatus(status)
	return g, nil
}
