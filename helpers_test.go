package roblox

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	"github.com/jamesprial/go-roblox-api-wrapper/test_helpers"
)

const testUsername = "ArticBot"

// newTestClient starts a fake Roblox API, answers the identity lookup and
// returns a client wired to it. The request log is cleared before returning.
func newTestClient(t *testing.T, opts ...func(*Config)) (*Client, *test_helpers.FakeRoblox) {
	t.Helper()

	fake := test_helpers.NewFakeRoblox()
	t.Cleanup(fake.Close)
	fake.SetupIdentity(testUsername, test_helpers.BotUserJSON)

	cfg := &Config{
		Email:      "bot@example.com",
		Username:   testUsername,
		Password:   "hunter2",
		Endpoints:  fake.Endpoints(),
		HTTPClient: fake.Client(),
		RateLimit:  &internal.RateLimitConfig{RequestsPerMinute: 6000, Burst: 100},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	fake.Reset()
	return client, fake
}

// withLogBuffer routes client logs into buf.
func withLogBuffer(buf *bytes.Buffer) func(*Config) {
	return func(cfg *Config) {
		cfg.Logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
