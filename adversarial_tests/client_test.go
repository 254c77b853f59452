package adversarial_tests

import (
	"context"
	"net/http"
	"testing"

	roblox "github.com/jamesprial/go-roblox-api-wrapper"
	"github.com/jamesprial/go-roblox-api-wrapper/adversarial_tests/helpers"
	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	"github.com/jamesprial/go-roblox-api-wrapper/test_helpers"
)

// newChaosClient builds a client against a fake Roblox API with a chaos
// transport in between. The transport starts in ChaosNone so the identity
// lookup succeeds.
func newChaosClient(t *testing.T) (*roblox.Client, *test_helpers.FakeRoblox, *helpers.ChaosTransport) {
	t.Helper()

	fake := test_helpers.NewFakeRoblox()
	t.Cleanup(fake.Close)
	fake.SetupIdentity("ArticBot", test_helpers.BotUserJSON)

	chaos := helpers.NewChaosTransport(fake.Client().Transport, helpers.ChaosConfig{
		Mode:        helpers.ChaosNone,
		FailureRate: 0.3,
		Seed:        42,
	})

	client, err := roblox.NewClient(context.Background(), &roblox.Config{
		Email:      "bot@example.com",
		Username:   "ArticBot",
		Password:   "hunter2",
		Endpoints:  fake.Endpoints(),
		HTTPClient: &http.Client{Transport: chaos},
		RateLimit:  &internal.RateLimitConfig{RequestsPerMinute: 60000, Burst: 1000},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(client.Close)

	fake.Reset()
	return client, fake, chaos
}
