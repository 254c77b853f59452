package roblox

import (
	"context"
	"reflect"
	"sync"

	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
)

// Event names accepted by Listen.
const (
	EventReady       = "on_ready"
	EventClientError = "on_client_error"
)

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// eventRegistry holds at most one handler per event.
type eventRegistry struct {
	mu      sync.Mutex
	ready   func(*User)
	onError func(error)
	known   map[string]reflect.Type
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{
		known: map[string]reflect.Type{
			EventReady:       reflect.TypeOf(func(*User) {}),
			EventClientError: reflect.TypeOf(func(error) {}),
		},
	}
}

// Listen registers handler for event. Handlers must be plain synchronous
// functions: func(*User) for EventReady and func(error) for EventClientError.
// A handler that takes a context or hands back a channel is rejected with
// errors.ErrAsyncHandler. Registration never touches the network.
func (c *Client) Listen(event string, handler any) error {
	return c.events.register(event, handler)
}

// OnReady registers the handler invoked once the login session is ready.
func (c *Client) OnReady(handler func(*User)) error {
	return c.events.register(EventReady, handler)
}

// OnClientError registers the handler invoked when login fails.
func (c *Client) OnClientError(handler func(error)) error {
	return c.events.register(EventClientError, handler)
}

func (r *eventRegistry) register(event string, handler any) error {
	want, ok := r.known[event]
	if !ok {
		return &pkgerrs.ListenerError{Event: event, Reason: "unknown event"}
	}

	v := reflect.ValueOf(handler)
	if handler == nil || v.Kind() == reflect.Func && v.IsNil() {
		return &pkgerrs.ListenerError{Event: event, Reason: "handler cannot be nil"}
	}
	t := v.Type()
	if t.Kind() != reflect.Func {
		return &pkgerrs.ListenerError{Event: event, Reason: "handler must be a function, got " + t.String()}
	}
	if isAsync(t) {
		return &pkgerrs.ListenerError{Event: event, Err: pkgerrs.ErrAsyncHandler}
	}
	if !t.ConvertibleTo(want) {
		return &pkgerrs.ListenerError{Event: event, Reason: "handler must be " + want.String() + ", got " + t.String()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch event {
	case EventReady:
		if r.ready != nil {
			return &pkgerrs.ListenerError{Event: event, Reason: "handler already registered"}
		}
		r.ready = v.Convert(want).Interface().(func(*User))
	case EventClientError:
		if r.onError != nil {
			return &pkgerrs.ListenerError{Event: event, Reason: "handler already registered"}
		}
		r.onError = v.Convert(want).Interface().(func(error))
	}
	return nil
}

// isAsync reports whether a handler would outlive a synchronous dispatch:
// it accepts a context or returns a channel.
func isAsync(t reflect.Type) bool {
	for i := 0; i < t.NumIn(); i++ {
		if t.In(i).Implements(contextType) {
			return true
		}
	}
	for i := 0; i < t.NumOut(); i++ {
		if t.Out(i).Kind() == reflect.Chan {
			return true
		}
	}
	return false
}

func (r *eventRegistry) fireReady(user *User) {
	r.mu.Lock()
	handler := r.ready
	r.mu.Unlock()
	if handler != nil {
		handler(user)
	}
}

func (r *eventRegistry) fireClientError(err error) {
	r.mu.Lock()
	handler := r.onError
	r.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}
