package internal

import (
	"sync"

	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// SessionGuard holds the login state of a client. A client has exactly one
// session: Begin succeeds once, every later call is refused.
type SessionGuard struct {
	mu      sync.Mutex
	started bool
	state   types.SessionState
	ready   chan struct{}
}

// NewSessionGuard creates a guard in the unauthenticated state.
func NewSessionGuard() *SessionGuard {
	return &SessionGuard{
		state: types.StateUnauthenticated,
		ready: make(chan struct{}),
	}
}

// Begin moves the guard into the logging-in state. It returns false if a
// session was already started.
func (g *SessionGuard) Begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return false
	}
	g.started = true
	g.state = types.StateLoggingIn
	return true
}

// Set records a new state. Reaching StateReady releases Ready waiters.
func (g *SessionGuard) Set(state types.SessionState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if state == types.StateReady && g.state != types.StateReady {
		select {
		case <-g.ready:
		default:
			close(g.ready)
		}
	}
	g.state = state
}

// State returns the current state.
func (g *SessionGuard) State() types.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Ready is closed once the session first becomes ready.
func (g *SessionGuard) Ready() <-chan struct{} {
	return g.ready
}
