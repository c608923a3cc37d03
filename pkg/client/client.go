package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/logger"
)

var ErrEmptyMessage = errors.New("message is empty")

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Reply is what the user sees for one message.
type Reply struct {
	Text        string
	ImageBase64 string
	ImageMIME   string
	Mode        chat.Mode
	Fallback    bool
	// Err is the failure that forced a fallback reply.
	Err error
}

// Client sends messages to a QuantumX server and keeps its session cookie.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	status  Status
}

type Option func(*Client)

// WithTimeout bounds each request, including reading the reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		status:  StatusOnline,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &http.Client{Jar: jar, Timeout: c.timeout}
	return c, nil
}

// Status reports whether the last exchange reached the server.
func (c *Client) Status() Status { return c.status }

// Send posts message in the given mode. Any network failure or non-2xx
// status yields the canned offline reply instead of an error; only an
// empty message is rejected.
func (c *Client) Send(ctx context.Context, message string, mode chat.Mode) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	resp, err := c.post(ctx, message, mode)
	if err != nil {
		logger.WarnCF("client", "Server unreachable, replying locally", map[string]interface{}{"error": err.Error()})
		c.status = StatusOffline
		return &Reply{Text: chat.CannedReply(message), Mode: mode, Fallback: true, Err: err}, nil
	}

	c.status = StatusOnline
	reply := &Reply{Text: resp.Response, Mode: resp.Mode}
	if reply.Text == "" {
		reply.Text = "Sem resposta no momento."
	}
	if resp.ImageBase64 != nil {
		reply.ImageBase64 = *resp.ImageBase64
		reply.ImageMIME = resp.ImageMIME
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, message string, mode chat.Mode) (*chat.Response, error) {
	form := url.Values{"message": {message}, "mode": {string(mode)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var out chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (*chat.Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	var h chat.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decoding health: %w", err)
	}
	return &h, nil
}
