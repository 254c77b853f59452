package helpers

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ChaosMode represents different failure modes for chaos testing
type ChaosMode int32

const (
	// ChaosNone passes requests through untouched
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset simulates connection reset by peer
	ChaosConnectionReset

	// ChaosPartialRead cuts the response body short and fails the read
	ChaosPartialRead

	// ChaosSlowResponse holds the request until its context ends
	ChaosSlowResponse

	// ChaosEmptyBody replaces the body with nothing
	ChaosEmptyBody

	// ChaosInvalidJSON replaces the body with broken JSON
	ChaosInvalidJSON

	// ChaosHTMLError answers a 503 with an HTML page instead of the error envelope
	ChaosHTMLError

	// ChaosIntermittent randomly applies one of the modes above
	ChaosIntermittent
)

// ChaosConfig configures the chaos transport
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// FailureRate is the probability of a failure in ChaosIntermittent mode
	FailureRate float64

	// PartialReadBytes is how much of the body survives ChaosPartialRead
	PartialReadBytes int

	// Seed makes ChaosIntermittent reproducible
	Seed int64
}

// ChaosTransport wraps an http.RoundTripper and injects failures. The mode
// can be switched while requests are in flight, so a client can be built
// cleanly and then degraded.
type ChaosTransport struct {
	base   http.RoundTripper
	mode   atomic.Int32
	config ChaosConfig

	requests atomic.Uint64
	injected atomic.Uint64

	mu  sync.Mutex
	rnd *rand.Rand
}

// ErrConnectionReset is what ChaosConnectionReset returns
var ErrConnectionReset = errors.New("connection reset by peer")

// errPartialRead is returned once a truncated body is exhausted
var errPartialRead = errors.New("unexpected EOF: connection closed mid-body")

// NewChaosTransport wraps base. A nil base uses http.DefaultTransport.
func NewChaosTransport(base http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	t := &ChaosTransport{
		base:   base,
		config: config,
		rnd:    rand.New(rand.NewSource(seed)),
	}
	t.mode.Store(int32(config.Mode))
	return t
}

// SetMode switches the failure mode for subsequent requests
func (t *ChaosTransport) SetMode(mode ChaosMode) {
	t.mode.Store(int32(mode))
}

// Requests returns how many requests went through the transport
func (t *ChaosTransport) Requests() uint64 {
	return t.requests.Load()
}

// Injected returns how many requests had a failure injected
func (t *ChaosTransport) Injected() uint64 {
	return t.injected.Load()
}

// RoundTrip implements http.RoundTripper
func (t *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.requests.Add(1)

	mode := ChaosMode(t.mode.Load())
	if mode == ChaosIntermittent {
		mode = t.pickIntermittent()
	}
	if mode != ChaosNone {
		t.injected.Add(1)
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, ErrConnectionReset

	case ChaosSlowResponse:
		<-req.Context().Done()
		return nil, req.Context().Err()

	case ChaosHTMLError:
		return newResponse(req, http.StatusServiceUnavailable, "text/html",
			"<html><body><h1>Service Unavailable</h1></body></html>"), nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || mode == ChaosNone {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	switch mode {
	case ChaosPartialRead:
		size := t.config.PartialReadBytes
		if size <= 0 || size >= len(body) {
			size = len(body) / 2
		}
		resp.Body = &partialReadCloser{reader: bytes.NewReader(body[:size])}
	case ChaosEmptyBody:
		resp.Body = io.NopCloser(strings.NewReader(""))
	case ChaosInvalidJSON:
		resp.Body = io.NopCloser(strings.NewReader(`{"Id": 1, "Username": "Rob`))
	}
	resp.ContentLength = -1
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport
func (t *ChaosTransport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}

func (t *ChaosTransport) pickIntermittent() ChaosMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rnd.Float64() >= t.config.FailureRate {
		return ChaosNone
	}
	modes := []ChaosMode{
		ChaosConnectionReset,
		ChaosPartialRead,
		ChaosEmptyBody,
		ChaosInvalidJSON,
		ChaosHTMLError,
	}
	return modes[t.rnd.Intn(len(modes))]
}

// partialReadCloser serves its bytes and then fails instead of reporting EOF
type partialReadCloser struct {
	reader *bytes.Reader
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, errPartialRead
	}
	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

func newResponse(req *http.Request, status int, contentType, body string) *http.Response {
	return &http.Response{
		Status:        http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {contentType}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
