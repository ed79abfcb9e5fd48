// Package e2e drives a running snake server over its http api.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/battlesnakeio/classic/api"
)

type client struct {
	apiURL string
	client *http.Client
}

func (c *client) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.apiURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		err = json.NewDecoder(resp.Body).Decode(out)
	}
	if cErr := resp.Body.Close(); cErr != nil {
		return cErr
	}
	return err
}

func (c *client) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.apiURL + path)
	if err != nil {
		return err
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if cErr := resp.Body.Close(); cErr != nil {
		return cErr
	}
	return err
}

func (c *client) beginGame(cr *api.CreateRequest) (string, error) {
	res := &api.CreateResponse{}
	if err := c.post("/games", cr, res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// move sends a direction change. Rejected moves are not errors, a game may
// have ended or the limiter may have kicked in.
func (c *client) move(gameID, direction string) error {
	return c.post(fmt.Sprintf("/games/%s/move", gameID), &api.MoveRequest{Direction: direction}, nil)
}

func (c *client) gameStatus(gameID string) (*api.StatusResponse, *api.FramesResponse, error) {
	st := &api.StatusResponse{}
	frames := &api.FramesResponse{}

	if err := c.get(fmt.Sprintf("/games/%s", gameID), st); err != nil {
		return nil, nil, err
	}
	if err := c.get(fmt.Sprintf("/games/%s/frames?limit=10000", gameID), frames); err != nil {
		return nil, nil, err
	}
	return st, frames, nil
}
