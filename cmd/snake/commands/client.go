package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

var client = &http.Client{
	Timeout: 5 * time.Second,
}

// call sends body as json to the api and decodes the reply into out when it
// is not nil.
func call(method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.Wrap(err, "unable to marshal request")
		}
	}
	req, err := http.NewRequest(method, apiAddr+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error while calling %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := struct {
			Error string `json:"error"`
		}{}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "unable to unmarshal response: %s", string(data))
	}
	return nil
}
