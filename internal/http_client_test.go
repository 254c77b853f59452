package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
	"golang.org/x/time/rate"
)

// sameHost points every Roblox host at base, each under its own path prefix.
func sameHost(base string) types.Endpoints {
	return types.Endpoints{
		API:             base + "/api/",
		Games:           base + "/games/",
		Users:           base + "/users/",
		Groups:          base + "/groups/",
		PrivateMessages: base + "/privatemessages/",
		Auth:            base + "/auth/",
		WWW:             base + "/www/",
	}
}

var fastLimit = &RateLimitConfig{RequestsPerMinute: 6000, Burst: 100}

func TestNewClient_DefaultRateLimiter(t *testing.T) {
	client, err := NewClient(nil, sameHost("https://example.com"), "agent", nil, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if client.limiter == nil {
		t.Fatalf("expected limiter to be initialized")
	}

	if got := client.limiter.Limit(); got != rate.Limit(1) {
		t.Errorf("expected default limit 1 req/sec, got %v", got)
	}
	if got := client.limiter.Burst(); got != 10 {
		t.Errorf("expected default burst of 10, got %d", got)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		endpoints types.Endpoints
	}{
		{name: "missing host", endpoints: types.Endpoints{}},
		{name: "relative", endpoints: func() types.Endpoints {
			e := sameHost("https://example.com")
			e.Games = "games.roblox.com"
			return e
		}()},
		{name: "unparseable", endpoints: func() types.Endpoints {
			e := sameHost("https://example.com")
			e.WWW = "://bad"
			return e
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(nil, tt.endpoints, "agent", nil, nil)
			if err == nil {
				t.Fatal("expected error for invalid base URL")
			}

			var clientErr *ClientError
			if !errors.As(err, &clientErr) {
				t.Fatalf("expected ClientError, got %T", err)
			}
		})
	}
}

func TestNewClient_CustomLimiterConfig(t *testing.T) {
	client, err := NewClient(nil, sameHost("https://example.com"), "agent", &RateLimitConfig{RequestsPerMinute: 120, Burst: 5}, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if got := client.limiter.Limit(); got != rate.Limit(2) {
		t.Errorf("expected limit of 2 req/sec, got %v", got)
	}
	if got := client.limiter.Burst(); got != 5 {
		t.Errorf("expected burst of 5, got %d", got)
	}
}

func TestParseBaseURL(t *testing.T) {
	got, err := ParseBaseURL("https://users.roblox.com/v1")
	if err != nil {
		t.Fatalf("ParseBaseURL returned error: %v", err)
	}
	if got.String() != "https://users.roblox.com/v1/" {
		t.Errorf("expected trailing slash, got %q", got.String())
	}

	if _, err := ParseBaseURL(""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestClient_NewRequestRoutesHosts(t *testing.T) {
	c, err := NewClient(&http.Client{}, sameHost("https://example.com"), "my-agent", fastLimit, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	tests := []struct {
		host string
		path string
		want string
	}{
		{HostAPI, "users/1", "https://example.com/api/users/1"},
		{HostGames, "/v1/games", "https://example.com/games/v1/games"},
		{HostUsers, "v1/users/1/username-history", "https://example.com/users/v1/users/1/username-history"},
		{HostGroups, "v2/groups/1/wall/posts", "https://example.com/groups/v2/groups/1/wall/posts"},
		{HostPrivateMessages, "v1/messages/send", "https://example.com/privatemessages/v1/messages/send"},
	}

	for _, tt := range tests {
		req, err := c.NewRequest(context.Background(), tt.host, http.MethodGet, tt.path, nil)
		if err != nil {
			t.Fatalf("NewRequest(%s) returned error: %v", tt.host, err)
		}
		if got := req.URL.String(); got != tt.want {
			t.Errorf("NewRequest(%s, %s) = %q, want %q", tt.host, tt.path, got, tt.want)
		}
	}

	if _, err := c.NewRequest(context.Background(), "catalog", http.MethodGet, "x", nil); err == nil {
		t.Error("expected error for unknown host")
	}
}

func TestClient_NewRequestSetsHeaders(t *testing.T) {
	c, err := NewClient(&http.Client{}, sameHost("https://example.com"), "my-agent", fastLimit, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	params := url.Values{"limit": {"10"}, "sortOrder": {"Desc"}}
	req, err := c.NewRequest(context.Background(), HostGroups, http.MethodGet, "v2/groups/1/wall/posts", nil, params)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	if got := req.Header.Get("User-Agent"); got != "my-agent" {
		t.Errorf("expected User-Agent header to be set, got %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("expected Accept header, got %q", got)
	}
	if got := req.URL.RawQuery; got != "limit=10&sortOrder=Desc" {
		t.Errorf("unexpected query %q", got)
	}
	if len(req.Cookies()) != 0 {
		t.Errorf("expected no cookies before a session is set")
	}
}

func TestClient_SessionHeaders(t *testing.T) {
	c, err := NewClient(&http.Client{}, sameHost("https://example.com"), "my-agent", fastLimit, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetSession("cookie-value", "csrf-value")

	get, _ := c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	cookie, err := get.Cookie(SecurityCookieName)
	if err != nil {
		t.Fatalf("expected security cookie on GET: %v", err)
	}
	if cookie.Value != "cookie-value" {
		t.Errorf("unexpected cookie value %q", cookie.Value)
	}
	if got := get.Header.Get(CSRFHeader); got != "" {
		t.Errorf("expected no CSRF header on GET, got %q", got)
	}

	post, _ := c.NewJSONRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", map[string]string{"subject": "hi"})
	if got := post.Header.Get(CSRFHeader); got != "csrf-value" {
		t.Errorf("expected CSRF header on POST, got %q", got)
	}
	if got := post.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}
	body, _ := io.ReadAll(post.Body)
	if string(body) != `{"subject":"hi"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestClient_DoRawStatusHandling(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantCode    int
		wantMessage string
	}{
		{name: "ok", status: http.StatusOK, body: `{"Id":1}`},
		{name: "created", status: http.StatusCreated, body: `{}`},
		{name: "envelope", status: http.StatusBadRequest, body: `{"errors":[{"code":4,"message":"The user id is invalid."}]}`,
			wantErr: true, wantCode: 4, wantMessage: "The user id is invalid."},
		{name: "bare 404", status: http.StatusNotFound, body: `Not Found`,
			wantErr: true, wantMessage: "Not Found"},
		{name: "empty errors", status: http.StatusInternalServerError, body: `{"errors":[]}`,
			wantErr: true, wantMessage: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			req, _ := c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)

			body, err := c.DoRaw(req)
			if string(body) != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, body)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, apiErr.Code)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
		})
	}
}

func TestClient_DoDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"sent"}`))
	}))
	defer server.Close()

	c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)
	req, _ := c.NewRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", nil)

	var result types.MessageResult
	if err := c.Do(req, &result); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if !result.Success || result.Message != "sent" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestClient_DoRequiresOK(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "created", status: http.StatusCreated, body: `{"success":true}`, wantMessage: "Created"},
		{name: "no content", status: http.StatusNoContent, wantMessage: "No Content"},
		{name: "forbidden", status: http.StatusForbidden, body: `{"errors":[{"code":0,"message":"Token Validation Failed"}]}`, wantMessage: "Token Validation Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)
			req, _ := c.NewRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", nil)

			var result types.MessageResult
			err := c.Do(req, &result)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
			if result.Success {
				t.Error("expected the body to be left undecoded")
			}
		})
	}
}

func TestClient_DoDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":tru`))
	}))
	defer server.Close()

	c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)
	req, _ := c.NewRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", nil)

	var result types.MessageResult
	err := c.Do(req, &result)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T (%v)", err, err)
	}
}

func TestClient_RotatesCSRFToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(CSRFHeader, "rotated")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)

	// Without a session the header is ignored.
	req, _ := c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	if _, err := c.DoRaw(req); err != nil {
		t.Fatalf("DoRaw returned error: %v", err)
	}
	post, _ := c.NewRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", nil)
	if got := post.Header.Get(CSRFHeader); got != "" {
		t.Fatalf("expected no token without a session, got %q", got)
	}

	c.SetSession("cookie", "original")
	req, _ = c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	if _, err := c.DoRaw(req); err != nil {
		t.Fatalf("DoRaw returned error: %v", err)
	}
	post, _ = c.NewRequest(context.Background(), HostPrivateMessages, http.MethodPost, "v1/messages/send", nil)
	if got := post.Header.Get(CSRFHeader); got != "rotated" {
		t.Errorf("expected rotated token, got %q", got)
	}
}

func TestClient_RetryAfterDefersRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0.2")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"errors":[{"code":0,"message":"Too many requests"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, nil)

	req, _ := c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	_, err := c.DoRaw(req)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}

	start := time.Now()
	req, _ = c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	if _, err := c.DoRaw(req); err != nil {
		t.Fatalf("DoRaw returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("expected the second request to wait for Retry-After, waited %v", elapsed)
	}
}

func TestClient_ForcedDelayHonoursContext(t *testing.T) {
	c, _ := NewClient(nil, sameHost("https://example.com"), "agent", fastLimit, nil)
	c.deferRequests(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, _ := c.NewRequest(ctx, HostAPI, http.MethodGet, "users/1", nil)
	_, err := c.DoRaw(req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_DebugLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, _ := NewClient(server.Client(), sameHost(server.URL), "agent", fastLimit, logger)

	req, _ := c.NewRequest(context.Background(), HostAPI, http.MethodGet, "users/1", nil)
	if _, err := c.DoRaw(req); err != nil {
		t.Fatalf("DoRaw returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "roblox request") || !strings.Contains(out, "status=200") {
		t.Errorf("expected request log, got %q", out)
	}
	if strings.Contains(out, strings.Repeat("x", logPreviewLength+1)) {
		t.Errorf("expected response preview to be truncated")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	code, msg, ok := APIErrorMessage([]byte(`{"errors":[{"code":7,"message":"first"},{"code":8,"message":"second"}]}`))
	if !ok || code != 7 || msg != "first" {
		t.Errorf("unexpected result code=%d msg=%q ok=%v", code, msg, ok)
	}

	if _, _, ok := APIErrorMessage([]byte(`<html>`)); ok {
		t.Error("expected ok=false for non-JSON body")
	}
}
