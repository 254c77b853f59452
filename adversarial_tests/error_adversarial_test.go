package adversarial_tests

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jamesprial/go-roblox-api-wrapper/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/test_helpers"
)

// TestTransportFailures verifies each injected failure surfaces as the
// matching error type and never as a decoded user.
func TestTransportFailures(t *testing.T) {
	tests := []struct {
		name  string
		mode  helpers.ChaosMode
		check func(t *testing.T, err error)
	}{
		{
			name: "connection reset",
			mode: helpers.ChaosConnectionReset,
			check: func(t *testing.T, err error) {
				var reqErr *pkgerrs.RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("error = %v (%T), want *RequestError", err, err)
				}
				if !errors.Is(err, helpers.ErrConnectionReset) {
					t.Errorf("error chain lost the transport cause: %v", err)
				}
			},
		},
		{
			name: "partial read",
			mode: helpers.ChaosPartialRead,
			check: func(t *testing.T, err error) {
				var reqErr *pkgerrs.RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("error = %v (%T), want *RequestError", err, err)
				}
			},
		},
		{
			name: "empty body",
			mode: helpers.ChaosEmptyBody,
			check: func(t *testing.T, err error) {
				var parseErr *pkgerrs.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("error = %v (%T), want *ParseError", err, err)
				}
			},
		},
		{
			name: "invalid json",
			mode: helpers.ChaosInvalidJSON,
			check: func(t *testing.T, err error) {
				var parseErr *pkgerrs.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("error = %v (%T), want *ParseError", err, err)
				}
			},
		},
		{
			name: "html error page",
			mode: helpers.ChaosHTMLError,
			check: func(t *testing.T, err error) {
				var apiErr *pkgerrs.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("error = %v (%T), want *APIError", err, err)
				}
				if apiErr.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
				}
				if apiErr.Message != http.StatusText(http.StatusServiceUnavailable) {
					t.Errorf("Message = %q, want the status text", apiErr.Message)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake, chaos := newChaosClient(t)
			fake.SetupUser(1, test_helpers.RobloxUserJSON)
			chaos.SetMode(tt.mode)

			user, err := client.FetchUser(context.Background(), 1)
			if err == nil {
				t.Fatalf("FetchUser() = %v, want error", user)
			}
			tt.check(t, err)

			chaos.SetMode(helpers.ChaosNone)
			user, err = client.FetchUser(context.Background(), 1)
			if err != nil {
				t.Fatalf("FetchUser() after recovery error = %v", err)
			}
			if user.Username != "Roblox" {
				t.Errorf("Username = %q, want Roblox", user.Username)
			}
		})
	}
}

// TestHungServerHonoursDeadline verifies a request stuck in the transport is
// released by its context.
func TestHungServerHonoursDeadline(t *testing.T) {
	client, fake, chaos := newChaosClient(t)
	fake.SetupUser(1, test_helpers.RobloxUserJSON)
	chaos.SetMode(helpers.ChaosSlowResponse)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	detector := helpers.NewDeadlockDetector(5 * time.Second)
	err := detector.Run(func() error {
		_, err := client.FetchUser(ctx, 1)
		return err
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("FetchUser() error = %v, want context.DeadlineExceeded", err)
	}
}

// TestWriteFailures verifies transport failures on mutating calls are
// request errors, while server rejections are forbidden errors.
func TestWriteFailures(t *testing.T) {
	client, fake, chaos := newChaosClient(t)
	fake.SetupLogin("csrf", http.StatusOK, `{}`)
	fake.SetJSON(http.MethodGet, test_helpers.PrefixGroups+"/v1/groups/1", http.StatusOK, test_helpers.GroupJSON)

	if err := client.Connect(context.Background(), "cookie"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	group, err := client.FetchGroup(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchGroup() error = %v", err)
	}

	chaos.SetMode(helpers.ChaosConnectionReset)
	_, err = group.Send(context.Background(), "gm")
	var reqErr *pkgerrs.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Send() under reset error = %v (%T), want *RequestError", err, err)
	}

	chaos.SetMode(helpers.ChaosHTMLError)
	_, err = group.Send(context.Background(), "gm")
	var forbidden *pkgerrs.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("Send() under 503 error = %v (%T), want *ForbiddenError", err, err)
	}
	if forbidden.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", forbidden.StatusCode)
	}
}

// TestIntermittentFailures hammers a flaky transport and checks every call
// either succeeds with the right user or fails with a typed error.
func TestIntermittentFailures(t *testing.T) {
	client, fake, chaos := newChaosClient(t)
	fake.SetupUser(1, test_helpers.RobloxUserJSON)
	chaos.SetMode(helpers.ChaosIntermittent)
	before := chaos.Requests()

	var ok, failed int
	for i := 0; i < 200; i++ {
		user, err := client.FetchUser(context.Background(), 1)
		if err != nil {
			failed++
			if !isTypedError(err) {
				t.Fatalf("call %d: untyped error %v (%T)", i, err, err)
			}
			continue
		}
		ok++
		if user.ID != 1 || user.Username != "Roblox" {
			t.Fatalf("call %d: got %v", i, user)
		}
	}

	if got := chaos.Requests() - before; got != 200 {
		t.Errorf("transport saw %d requests, want 200", got)
	}
	if uint64(failed) != chaos.Injected() {
		t.Errorf("failed = %d, injected = %d", failed, chaos.Injected())
	}
	t.Logf("intermittent: %d ok, %d failed", ok, failed)
}

func isTypedError(err error) bool {
	var (
		reqErr   *pkgerrs.RequestError
		parseErr *pkgerrs.ParseError
		apiErr   *pkgerrs.APIError
	)
	return errors.As(err, &reqErr) || errors.As(err, &parseErr) || errors.As(err, &apiErr)
}
