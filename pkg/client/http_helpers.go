package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// do sends body as JSON and decodes the response into out when the status
// matches want. A non-empty token is sent as a bearer credential.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, want int) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doAuth is do with the session token. A 401 ends the session.
func (c *Client) doAuth(ctx context.Context, method, path string, body, out any, want int) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	err = c.do(ctx, method, path, token, body, out, want)
	if StatusCode(err) == http.StatusUnauthorized {
		c.expire(token)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return err
}
