// Package apiclient talks to the mentor service's REST API on behalf of a
// signed-in user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

const (
	progressPath = "/api/v1/progress"
	methodsPath  = "/api/v1/methods"

	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ domain.ProgressRecorder = (*Client)(nil)

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// RecordProgress stores a graded attempt for the token's user.
func (c *Client) RecordProgress(ctx context.Context, update domain.ProgressUpdate) error {
	return c.do(ctx, http.MethodPut, progressPath, update, nil)
}

func (c *Client) ListProgress(ctx context.Context) ([]domain.Progress, error) {
	var payload struct {
		Progress []domain.Progress `json:"progress"`
	}
	if err := c.do(ctx, http.MethodGet, progressPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Progress, nil
}

func (c *Client) ListMethods(ctx context.Context) ([]domain.Method, error) {
	var payload struct {
		Methods []domain.Method `json:"methods"`
	}
	if err := c.do(ctx, http.MethodGet, methodsPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Methods, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s failed (%d): %s", method, path, resp.StatusCode, errorMessage(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage extracts echo's {"message": ...} error body, falling back to
// the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
