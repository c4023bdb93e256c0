// Package transport talks to the game server: long-poll, move update and
// game creation.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ayu/internal/game"
	"ayu/internal/logging"
)

// StatusError is returned for responses with an unexpected status code.
// Body carries the server's response text for display.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Client issues requests relative to the directory of the game page, the
// same way the browser resolves "poll", "update" and "create".
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// NewClient returns a client for the server hosting pageURL. A nil
// httpClient uses http.DefaultClient; it must not impose a timeout shorter
// than the server's long-poll delay.
func NewClient(pageURL *url.URL, httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := *pageURL
	base.Fragment = ""
	base.RawFragment = ""
	base.RawQuery = ""
	if i := strings.LastIndex(base.Path, "/"); i >= 0 {
		base.Path = base.Path[:i+1]
	} else {
		base.Path = "/"
	}
	return &Client{base: &base, http: httpClient, userAgent: userAgent}
}

func (c *Client) endpoint(name string) *url.URL {
	return c.base.JoinPath(name)
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	return resp, body, nil
}

// Poll asks for the state of gameID once its version differs from version.
// It returns a nil body when the server had nothing new before its own
// deadline.
func (c *Client) Poll(ctx context.Context, gameID string, version int) ([]byte, error) {
	u := c.endpoint("poll")
	q := url.Values{}
	q.Set("game", gameID)
	q.Set("version", strconv.Itoa(version))
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	logging.Debugf("GET %s", u)
	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return body, nil
}

// Update submits a move. Only 200 counts as accepted.
func (c *Client) Update(ctx context.Context, upd game.UpdateRequest) error {
	resp, body, err := c.postJSON(ctx, "update", upd)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Create asks the server for a new game of the given size.
func (c *Client) Create(ctx context.Context, size int) (game.CreateResponse, error) {
	var out game.CreateResponse
	resp, body, err := c.postJSON(ctx, "create", game.CreateRequest{Size: size})
	if err != nil {
		return out, err
	}
	if resp.StatusCode != http.StatusOK {
		return out, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode create response: %w", err)
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, name string, v any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	u := c.endpoint(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	logging.Debugf("POST %s %s", u, payload)
	return c.do(req)
}
