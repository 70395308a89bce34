package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/flagmap/internal/domain/types"
)

// Client talks to a running flagmap service.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// TriggerRun starts a run with POST /runs and returns its report.
func (c *Client) TriggerRun(ctx context.Context) (types.RunReport, error) {
	var r types.RunReport
	err := c.getJSON(ctx, http.MethodPost, "/runs", &r)
	return r, err
}

// LatestRun fetches GET /runs/latest.
func (c *Client) LatestRun(ctx context.Context) (types.RunReport, error) {
	var r types.RunReport
	err := c.getJSON(ctx, http.MethodGet, "/runs/latest", &r)
	return r, err
}

// GameDrives fetches GET /games/{key}/drives.
func (c *Client) GameDrives(ctx context.Context, key string) ([]types.DriveView, error) {
	var body struct {
		Drives []types.DriveView `json:"drives"`
	}
	if err := c.getJSON(ctx, http.MethodGet, "/games/"+url.PathEscape(key)+"/drives", &body); err != nil {
		return nil, err
	}
	return body.Drives, nil
}

func (c *Client) getJSON(ctx context.Context, method, path string, v any) error {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service: %w", err)
	}
	return resp, nil
}
