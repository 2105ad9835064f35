package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL   = "https://dummyjson.com"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "adminboard/1.0"

	maxErrorBody = 64 << 10
)

// Client talks to a dummyjson-compatible REST service
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger enables request logging
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithToken starts the client with a bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a new API client for baseURL (DefaultBaseURL if empty)
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken sets (or clears, with "") the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run whenever an authenticated request is
// answered with 401. fn runs on the requesting goroutine.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to create request", "url", endpoint, "error", err)
		}
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.logger != nil {
		c.logger.Info(r.method, "endpoint", endpoint, "request_id", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Request failed", "url", endpoint, "request_id", requestID, "error", err)
		}
		return &Error{Op: r.op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug("Response", "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Op: r.op, URL: endpoint, StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
		}
		if c.logger != nil {
			c.logger.Warn("Unexpected status", "url", endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func pageQuery(limit, skip int) url.Values {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("skip", fmt.Sprintf("%d", skip))
	return q
}
