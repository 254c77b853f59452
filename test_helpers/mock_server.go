package test_helpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// Path prefixes under which each Roblox host is served by FakeRoblox.
const (
	PrefixAPI             = "/api"
	PrefixGames           = "/games"
	PrefixUsers           = "/users"
	PrefixGroups          = "/groups"
	PrefixPrivateMessages = "/privatemessages"
	PrefixAuth            = "/auth"
	PrefixWWW             = "/www"
)

// FakeRoblox is an httptest server that routes every Roblox host the client
// uses. Responses are registered per concrete path; routes without a
// registered response answer 404 with a Roblox error envelope.
type FakeRoblox struct {
	server *httptest.Server
	router chi.Router

	mu         sync.RWMutex
	responses  map[string]*MockResponse
	requestLog []RequestEntry
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method       string
	Path         string
	RawQuery     string
	Pattern      string
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// NewFakeRoblox starts a fake Roblox API.
func NewFakeRoblox() *FakeRoblox {
	f := &FakeRoblox{
		responses: make(map[string]*MockResponse),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, 0, "NotFound")
	})

	r.Route(PrefixAPI, func(r chi.Router) {
		r.Get("/users/get-by-username", f.serve)
		r.Get("/users/{id}", f.serve)
		r.Get("/users/{id}/friends", f.serve)
	})
	r.Route(PrefixGames, func(r chi.Router) {
		r.Get("/v1/games", f.serve)
		r.Get("/v2/users/{id}/games", f.serve)
		r.Get("/v2/users/{id}/favorite/games", f.serve)
		r.Get("/v2/groups/{id}/games", f.serve)
	})
	r.Route(PrefixUsers, func(r chi.Router) {
		r.Get("/v1/users/search", f.serve)
		r.Get("/v1/users/{id}", f.serve)
		r.Get("/v1/users/{id}/username-history", f.serve)
	})
	r.Route(PrefixGroups, func(r chi.Router) {
		r.Get("/v1/groups/{id}", f.serve)
		r.Get("/v2/groups/{id}/wall/posts", f.serve)
		r.Post("/v2/groups/{id}/wall/posts", f.serve)
		r.Get("/v2/users/{id}/groups/roles", f.serve)
	})
	r.Route(PrefixPrivateMessages, func(r chi.Router) {
		r.Post("/v1/messages/send", f.serve)
	})
	r.Route(PrefixAuth, func(r chi.Router) {
		r.Post("/v2/logout", f.serve)
	})
	r.Route(PrefixWWW, func(r chi.Router) {
		r.Post("/", f.serve)
	})

	f.router = r
	f.server = httptest.NewServer(r)
	return f
}

// URL returns the base URL of the fake server
func (f *FakeRoblox) URL() string {
	return f.server.URL
}

// Client returns an HTTP client configured for the fake server.
func (f *FakeRoblox) Client() *http.Client {
	return f.server.Client()
}

// Endpoints returns base URLs that route every host to this server.
func (f *FakeRoblox) Endpoints() types.Endpoints {
	return types.Endpoints{
		API:             f.server.URL + PrefixAPI + "/",
		Games:           f.server.URL + PrefixGames + "/",
		Users:           f.server.URL + PrefixUsers + "/",
		Groups:          f.server.URL + PrefixGroups + "/",
		PrivateMessages: f.server.URL + PrefixPrivateMessages + "/",
		Auth:            f.server.URL + PrefixAuth + "/",
		WWW:             f.server.URL + PrefixWWW + "/",
	}
}

// Close shuts down the fake server
func (f *FakeRoblox) Close() {
	f.server.Close()
}

// SetResponse registers the response for method and path. The path may carry
// a query string, which then has to match exactly; a bare path matches any
// query.
func (f *FakeRoblox) SetResponse(method, path string, response *MockResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = response
}

// SetJSON registers a JSON body with the given status.
func (f *FakeRoblox) SetJSON(method, path string, status int, body string) {
	f.SetResponse(method, path, &MockResponse{
		Status:  status,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// SetError registers a Roblox error envelope with the given status.
func (f *FakeRoblox) SetError(method, path string, status, code int, message string) {
	f.SetJSON(method, path, status, ErrorJSON(code, message))
}

// Requests returns a copy of the request log.
func (f *FakeRoblox) Requests() []RequestEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]RequestEntry{}, f.requestLog...)
}

// CallCount returns how many requests hit method and path.
func (f *FakeRoblox) CallCount(method, path string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, entry := range f.requestLog {
		if entry.Method == method && entry.Path == path {
			count++
		}
	}
	return count
}

// PatternCount returns how many requests were routed to a chi pattern such
// as "/api/users/{id}".
func (f *FakeRoblox) PatternCount(method, pattern string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, entry := range f.requestLog {
		if entry.Method == method && entry.Pattern == pattern {
			count++
		}
	}
	return count
}

// LastRequest returns the last request made to method and path.
func (f *FakeRoblox) LastRequest(method, path string) (*RequestEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := len(f.requestLog) - 1; i >= 0; i-- {
		if f.requestLog[i].Method == method && f.requestLog[i].Path == path {
			entry := f.requestLog[i]
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("no requests found for %s %s", method, path)
}

// Reset clears the request log.
func (f *FakeRoblox) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestLog = f.requestLog[:0]
}

// record logs every request, routed or not.
func (f *FakeRoblox) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			pattern = strings.ReplaceAll(rctx.RoutePattern(), "/*", "")
		}

		f.mu.Lock()
		f.requestLog = append(f.requestLog, RequestEntry{
			Method:       r.Method,
			Path:         r.URL.Path,
			RawQuery:     r.URL.RawQuery,
			Pattern:      pattern,
			Headers:      r.Header.Clone(),
			Body:         string(body),
			Timestamp:    time.Now(),
			ResponseCode: rec.status,
		})
		f.mu.Unlock()
	})
}

func (f *FakeRoblox) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	response, ok := f.responses[r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery]
	if !ok {
		response, ok = f.responses[r.Method+" "+r.URL.Path]
	}
	f.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, 0, "NotFound")
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response.Body))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(ErrorJSON(code, message)))
}
