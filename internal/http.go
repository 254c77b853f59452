package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
	"golang.org/x/time/rate"
)

// Roblox hosts addressed by NewRequest.
const (
	HostAPI             = "api"
	HostGames           = "games"
	HostUsers           = "users"
	HostGroups          = "groups"
	HostPrivateMessages = "privatemessages"
	HostAuth            = "auth"
	HostWWW             = "www"
)

const (
	// SecurityCookieName is the session cookie Roblox authenticates with.
	SecurityCookieName = ".ROBLOSECURITY"
	// CSRFHeader carries the cross-site request forgery token on mutating calls.
	CSRFHeader = "X-CSRF-Token"
)

// Client manages communication with the Roblox API hosts.
type Client struct {
	client    *http.Client
	hosts     map[string]*url.URL
	UserAgent string
	logger    *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time

	sessionMu sync.RWMutex
	cookie    string
	csrfToken string
}

// RateLimitConfig controls how requests are throttled before reaching Roblox.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	logPreviewLength = 256
)

// NewClient returns a new Roblox API client.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewClient(httpClient *http.Client, endpoints types.Endpoints, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	hosts := make(map[string]*url.URL, 7)
	for name, raw := range map[string]string{
		HostAPI:             endpoints.API,
		HostGames:           endpoints.Games,
		HostUsers:           endpoints.Users,
		HostGroups:          endpoints.Groups,
		HostPrivateMessages: endpoints.PrivateMessages,
		HostAuth:            endpoints.Auth,
		HostWWW:             endpoints.WWW,
	} {
		parsed, err := ParseBaseURL(raw)
		if err != nil {
			return nil, &ClientError{OriginalErr: fmt.Errorf("%s host: %w", name, err)}
		}
		hosts[name] = parsed
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:    httpClient,
		hosts:     hosts,
		UserAgent: userAgent,
		logger:    logger,
		limiter:   buildLimiter(*rateCfg),
	}, nil
}

// ParseBaseURL parses a host base URL and guarantees a trailing slash so
// relative paths resolve beneath it.
func ParseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return parsed, nil
}

// SetSession installs the security cookie and CSRF token used by every
// subsequent request.
func (c *Client) SetSession(cookie, csrfToken string) {
	c.sessionMu.Lock()
	c.cookie = cookie
	c.csrfToken = csrfToken
	c.sessionMu.Unlock()
}

// CloseIdleConnections releases keep-alive connections held by the transport.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// NewRequest creates an API request against one of the Roblox hosts. The
// path is resolved relative to that host's base URL.
func (c *Client) NewRequest(ctx context.Context, host, method, path string, body io.Reader, params ...url.Values) (*http.Request, error) {
	base, ok := c.hosts[host]
	if !ok {
		return nil, &ClientError{OriginalErr: fmt.Errorf("unknown host %q", host)}
	}

	u, err := base.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &ClientError{OriginalErr: err}
	}
	if len(params) > 0 && params[0] != nil {
		u.RawQuery = params[0].Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &ClientError{OriginalErr: err}
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.sessionMu.RLock()
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: SecurityCookieName, Value: c.cookie})
	}
	if c.csrfToken != "" && method != http.MethodGet {
		req.Header.Set(CSRFHeader, c.csrfToken)
	}
	c.sessionMu.RUnlock()

	return req, nil
}

// NewJSONRequest creates a request whose body is payload encoded as JSON.
func (c *Client) NewJSONRequest(ctx context.Context, host, method, path string, payload any) (*http.Request, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{OriginalErr: err}
	}
	req, err := c.NewRequest(ctx, host, method, path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// DoRaw sends an API request and returns the raw response body. A non-2xx
// status is returned as *APIError carrying the server's first error message.
func (c *Client) DoRaw(req *http.Request) ([]byte, error) {
	resp, body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, newAPIError(resp, body)
	}
	return body, nil
}

// Do sends a mutating request and JSON decodes the response body into v.
// Only 200 OK counts as success; any other status, including the rest of
// the 2xx range, is returned as *APIError.
func (c *Client) Do(req *http.Request, v any) error {
	resp, body, err := c.send(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp, body)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// send waits for the limiter, performs the request and reads the whole body.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, nil, &ClientError{OriginalErr: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, &ClientError{OriginalErr: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)
	c.rotateCSRFToken(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &ClientError{OriginalErr: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("roblox request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"response_preview", preview(body))

	return resp, body, nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	code, msg, _ := APIErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Code: code, Message: msg}
}

// rotateCSRFToken adopts a fresh token when Roblox hands one out on an
// authenticated session.
func (c *Client) rotateCSRFToken(resp *http.Response) {
	token := resp.Header.Get(CSRFHeader)
	if token == "" {
		return
	}
	c.sessionMu.Lock()
	if c.cookie != "" {
		c.csrfToken = token
	}
	c.sessionMu.Unlock()
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRateHeaders defers later requests when Roblox answers 429 with a
// Retry-After hint.
func (c *Client) applyRateHeaders(resp *http.Response) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return
	}
	if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
		c.deferRequests(time.Duration(seconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}

func preview(body []byte) string {
	if len(body) > logPreviewLength {
		return string(body[:logPreviewLength])
	}
	return string(body)
}

// errorEnvelope is the body Roblox sends with failed requests.
type errorEnvelope struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// APIErrorMessage extracts the first error from a Roblox error envelope
// ({"errors":[{"code":0,"message":"..."}]}).
func APIErrorMessage(body []byte) (code int, message string, ok bool) {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Errors) == 0 {
		return 0, "", false
	}
	return env.Errors[0].Code, env.Errors[0].Message, true
}

// APIError represents an error returned by the Roblox API.
type APIError struct {
	StatusCode int
	Status     string
	Code       int
	Message    string
}

// Error returns the error message for the APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %s: %s", e.Status, e.Message)
}

// DecodeError reports a successful response whose body could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "failed to decode response body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ClientError represents an error that occurred within the client.
type ClientError struct {
	OriginalErr error
}

func (e *ClientError) Error() string {
	return e.OriginalErr.Error()
}

func (e *ClientError) Unwrap() error {
	return e.OriginalErr
}
