package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

const (
	ChatPath = "/functions/v1/chat"

	readChunkSize = 4096
	maxErrorBody  = 64 * 1024
)

// HTTPError is reported when the relay answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Client consumes the relay's event stream.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	maxBuffer  int
}

var _ domain.ChatStreamer = (*Client)(nil)

type Option func(*Client)

// WithToken sends the value as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMaxBuffer(n int) Option {
	return func(c *Client) { c.maxBuffer = n }
}

// NewClient returns a client for the relay served at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		url: baseURL + ChatPath,
		// no timeout: a stream lives as long as the generation does
		httpClient: &http.Client{},
		maxBuffer:  DefaultMaxBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamChat sends the conversation and delivers deltas to h.OnDelta as they
// arrive. Exactly one of h.OnDone or h.OnError is called, unless ctx is
// cancelled first, in which case neither is and ctx.Err() is returned.
func (c *Client) StreamChat(ctx context.Context, req domain.StreamRequest, h domain.StreamHandlers) error {
	body := domain.ChatRequest{Messages: req.Messages}
	if req.Context != nil {
		body.Mode = req.Context.Mode
		body.Context = BuildContext(req.Context)
	}

	fail := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithCtx(ctx).Debug("chat stream failed", zap.Error(err))
		if h.OnError != nil {
			h.OnError(err)
		}
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fail(fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", ContentType)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(readHTTPError(resp))
	}

	dec := NewDecoder(func(text string) {
		if ctx.Err() == nil && h.OnDelta != nil {
			h.OnDelta(text)
		}
	})
	dec.SetMaxBuffer(c.maxBuffer)

	chunk := make([]byte, readChunkSize)
	for !dec.Done() {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			if _, err := dec.Write(chunk[:n]); err != nil {
				return fail(err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("read stream: %w", readErr))
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	dec.Flush()
	if h.OnDone != nil {
		h.OnDone()
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error string `json:"error"`
	}
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}
