package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// WriteAt PUTs value at path in the realtime database. Writes are
// authenticated with the current session's token when one is active.
func (c *Client) WriteAt(ctx context.Context, path string, value any) error {
	_, err := c.databaseCall(ctx, http.MethodPut, path, value)
	return err
}

// AppendAt POSTs value under path, letting the database mint the child key.
func (c *Client) AppendAt(ctx context.Context, pathPrefix string, value any) (string, error) {
	data, err := c.databaseCall(ctx, http.MethodPost, pathPrefix, value)
	if err != nil {
		return "", err
	}

	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return "", err
	}

	return named.Name, nil
}

func (c *Client) databaseCall(ctx context.Context, method, path string, value any) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.cfg.DatabaseURL, path)

	if token := c.currentToken(); token != "" {
		endpoint += "?auth=" + url.QueryEscape(token)
	}

	body, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("database %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}

	return data, nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.idToken
}
