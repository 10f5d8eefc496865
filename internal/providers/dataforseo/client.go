// Package dataforseo is a client for the DataForSEO keyword, SERP and
// business data APIs.
package dataforseo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://api.dataforseo.com"
	defaultTimeout = 60 * time.Second
	statusOK       = 20000
)

// ErrNotConfigured is returned when the client has no credentials.
var ErrNotConfigured = errors.New("dataforseo credentials not configured")

// APIError is a non-success status from the API, either HTTP or envelope level.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dataforseo API error (%d): %s", e.StatusCode, e.Message)
}

// Config configures a Client.
type Config struct {
	Login    string
	Password string
	BaseURL  string
	Timeout  time.Duration
}

// Client talks to DataForSEO over fasthttp.
type Client struct {
	auth    string
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// New returns a client. A client without credentials is valid but every call
// returns ErrNotConfigured.
func New(cfg Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http: &fasthttp.Client{
			Name:                "agencydesk",
			MaxConnsPerHost:     16,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         defaultTimeout,
			WriteTimeout:        10 * time.Second,
		},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if cfg.Login != "" && cfg.Password != "" {
		c.auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Login+":"+cfg.Password))
	}
	return c
}

// Configured reports whether credentials are set.
func (c *Client) Configured() bool {
	return c != nil && c.auth != ""
}

type envelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int             `json:"status_code"`
		StatusMessage string          `json:"status_message"`
		Result        json.RawMessage `json:"result"`
	} `json:"tasks"`
}

// post sends a single-task request and decodes the first task's result into out.
func (c *Client) post(ctx context.Context, path string, task any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal([]any{task})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.auth)
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("dataforseo request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("failed to decode dataforseo response: %w", err)
	}
	if env.StatusCode != statusOK {
		return &APIError{StatusCode: env.StatusCode, Message: env.StatusMessage}
	}
	if len(env.Tasks) == 0 {
		return &APIError{StatusCode: env.StatusCode, Message: "no tasks in response"}
	}
	t := env.Tasks[0]
	if t.StatusCode != statusOK {
		return &APIError{StatusCode: t.StatusCode, Message: t.StatusMessage}
	}
	if len(t.Result) == 0 || string(t.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(t.Result, out); err != nil {
		return fmt.Errorf("failed to decode dataforseo result: %w", err)
	}
	return nil
}
