package roblox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

const (
	// DefaultUserAgent is the browser user agent Roblox expects from web clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 Safari/537.36"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// DefaultEndpoints are the production Roblox hosts.
var DefaultEndpoints = types.Endpoints{
	API:             "https://api.roblox.com/",
	Games:           "https://games.roblox.com/",
	Users:           "https://users.roblox.com/",
	Groups:          "https://groups.roblox.com/",
	PrivateMessages: "https://privatemessages.roblox.com/",
	Auth:            "https://auth.roblox.com/",
	WWW:             "https://www.roblox.com/",
}

// Config holds the configuration for the Roblox client.
//
// Username is always required: the client resolves its own account from it
// when it is created. Email and Password are only needed by Login.
type Config struct {
	// Email, Username and Password are submitted by Login.
	Email    string
	Username string
	Password string

	// UserAgent sent with every request. Defaults to DefaultUserAgent.
	UserAgent string

	// Endpoints overrides the base URL of individual hosts. Empty fields
	// fall back to DefaultEndpoints.
	Endpoints types.Endpoints

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RateLimit throttles outgoing requests. Defaults to 60 requests per
	// minute with a burst of 10.
	RateLimit *internal.RateLimitConfig

	// Logger for structured diagnostics and stability warnings.
	// Optional. Records are discarded when nil.
	Logger *slog.Logger
}

// HTTPClient defines the behavior required from the internal HTTP client.
// This interface allows for easy testing and customization of HTTP behavior.
type HTTPClient interface {
	NewRequest(ctx context.Context, host, method, path string, body io.Reader, params ...url.Values) (*http.Request, error)
	NewJSONRequest(ctx context.Context, host, method, path string, payload any) (*http.Request, error)
	DoRaw(req *http.Request) ([]byte, error)
	Do(req *http.Request, v any) error
	SetSession(cookie, csrfToken string)
	CloseIdleConnections()
}

// Authenticator performs the cookie login and returns the CSRF token for
// later mutating requests. The internal authenticator implements it.
type Authenticator interface {
	Login(ctx context.Context, securityCookie string) (string, error)
}

// Client is the main Roblox API client.
//
// A client resolves its own account when it is created and keeps it as the
// sender identity for direct messages. It owns at most one login session.
type Client struct {
	client    HTTPClient
	auth      Authenticator
	config    *Config
	parser    *internal.Parser
	validator *internal.Validator
	logger    *slog.Logger

	self    *User
	events  *eventRegistry
	session *internal.SessionGuard
}

// NewClient creates a client and resolves the caller's own account from
// config.Username. Resolution failure is returned as *errors.IdentityError.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.Username == "" {
		return nil, &pkgerrs.ConfigError{Field: "Username", Message: "username is required"}
	}

	validator := internal.NewValidator()

	// Set defaults
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if err := validator.ValidateUserAgent(config.UserAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}
	config.Endpoints = withDefaultEndpoints(config.Endpoints)
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient, err := internal.NewClient(config.HTTPClient, config.Endpoints, config.UserAgent, config.RateLimit, logger)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "Endpoints", Message: err.Error()}
	}

	auth, err := internal.NewAuthenticator(
		config.HTTPClient,
		config.Email,
		config.Username,
		config.Password,
		config.UserAgent,
		config.Endpoints.Auth,
		config.Endpoints.WWW,
	)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "Endpoints", Message: err.Error()}
	}

	c := newClient(httpClient, auth, config, logger)
	if err := c.resolveSelf(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(httpClient HTTPClient, auth Authenticator, config *Config, logger *slog.Logger) *Client {
	return &Client{
		client:    httpClient,
		auth:      auth,
		config:    config,
		parser:    internal.NewParser(),
		validator: internal.NewValidator(),
		logger:    logger,
		events:    newEventRegistry(),
		session:   internal.NewSessionGuard(),
	}
}

func withDefaultEndpoints(e types.Endpoints) types.Endpoints {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return types.Endpoints{
		API:             pick(e.API, DefaultEndpoints.API),
		Games:           pick(e.Games, DefaultEndpoints.Games),
		Users:           pick(e.Users, DefaultEndpoints.Users),
		Groups:          pick(e.Groups, DefaultEndpoints.Groups),
		PrivateMessages: pick(e.PrivateMessages, DefaultEndpoints.PrivateMessages),
		Auth:            pick(e.Auth, DefaultEndpoints.Auth),
		WWW:             pick(e.WWW, DefaultEndpoints.WWW),
	}
}

// resolveSelf looks up the configured username and stores it as the client's
// identity.
func (c *Client) resolveSelf(ctx context.Context) error {
	params := url.Values{"username": {c.config.Username}}
	body, err := c.get(ctx, internal.HostAPI, "users/get-by-username", params)
	if err != nil {
		return &pkgerrs.IdentityError{Username: c.config.Username, Err: c.readError("resolveSelf", err, pkgerrs.ResourceUser, c.config.Username)}
	}

	data, err := c.parser.ParseUser(body)
	if err != nil {
		return &pkgerrs.IdentityError{Username: c.config.Username, Err: c.parseError("resolveSelf", err, pkgerrs.ResourceUser, c.config.Username)}
	}

	c.self = &User{UserData: *data, client: c}
	c.logger.Debug("resolved client identity", "user_id", data.ID, "username", data.Username)
	return nil
}

// Self returns the account the client acts as.
func (c *Client) Self() *User {
	return c.self
}

// State returns the login session state.
func (c *Client) State() types.SessionState {
	return c.session.State()
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// FetchUser retrieves a user by id.
//
// Returns an error matching errors.ErrUserNotFound if Roblox reports the user
// missing or answers without the user's identity fields.
func (c *Client) FetchUser(ctx context.Context, id int64) (*User, error) {
	if err := c.validator.ValidateID("id", id); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, internal.HostAPI, "users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, c.readError("FetchUser", err, pkgerrs.ResourceUser, id)
	}

	data, err := c.parser.ParseUser(body)
	if err != nil {
		return nil, c.parseError("FetchUser", err, pkgerrs.ResourceUser, id)
	}
	return &User{UserData: *data, client: c}, nil
}

// FetchGame retrieves a game by its universe id. The returned game's own ID
// is the universe id; RootPlaceID names its start place.
func (c *Client) FetchGame(ctx context.Context, universeID int64) (*types.GameData, error) {
	if err := c.validator.ValidateID("universeID", universeID); err != nil {
		return nil, err
	}

	params := url.Values{"universeIds": {strconv.FormatInt(universeID, 10)}}
	body, err := c.get(ctx, internal.HostGames, "v1/games", params)
	if err != nil {
		return nil, c.readError("FetchGame", err, pkgerrs.ResourceGame, universeID)
	}

	game, err := c.parser.ParseGame(body)
	if err != nil {
		return nil, c.parseError("FetchGame", err, pkgerrs.ResourceGame, universeID)
	}
	return game, nil
}

// FetchGroup retrieves a group by id.
func (c *Client) FetchGroup(ctx context.Context, id int64) (*Group, error) {
	if err := c.validator.ValidateID("id", id); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, internal.HostGroups, "v1/groups/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, c.readError("FetchGroup", err, pkgerrs.ResourceGroup, id)
	}

	data, err := c.parser.ParseGroup(body)
	if err != nil {
		return nil, c.parseError("FetchGroup", err, pkgerrs.ResourceGroup, id)
	}
	return &Group{GroupData: *data, client: c}, nil
}

// SearchUsers searches users by keyword and resolves every hit to a full
// user, preserving the search order. limit must be 10, 25, 50 or 100.
//
// Each hit costs one extra request; there is no batching.
func (c *Client) SearchUsers(ctx context.Context, keyword string, limit int) ([]*User, error) {
	if err := c.validator.ValidateLimit(limit); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateKeyword(keyword); err != nil {
		return nil, err
	}

	params := url.Values{
		"keyword": {keyword},
		"limit":   {strconv.Itoa(limit)},
	}
	body, err := c.get(ctx, internal.HostUsers, "v1/users/search", params)
	if err != nil {
		return nil, c.readError("SearchUsers", err, "", keyword)
	}

	hits, err := c.parser.ParseSearchHits(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "SearchUsers", Err: err}
	}

	users := make([]*User, 0, len(hits))
	for _, hit := range hits {
		user, err := c.FetchUser(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUser is the former name of SearchUsers.
//
// Deprecated: use SearchUsers.
func (c *Client) GetUser(ctx context.Context, keyword string, limit int) ([]*User, error) {
	internal.WarnDeprecated(ctx, c.logger, "GetUser", "SearchUsers")
	return c.SearchUsers(ctx, keyword, limit)
}

// get issues a GET against host and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, host, path string, params url.Values) ([]byte, error) {
	req, err := c.client.NewRequest(ctx, host, http.MethodGet, path, nil, params)
	if err != nil {
		return nil, err
	}
	return c.client.DoRaw(req)
}

// readError translates a failed read into the public taxonomy: 404 becomes
// the resource's not-found error, other statuses an *errors.APIError.
func (c *Client) readError(operation string, err error, resource string, id any) error {
	var apiErr *internal.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound && resource != "" {
			return &pkgerrs.NotFoundError{Resource: resource, ID: id, Err: err}
		}
		return &pkgerrs.APIError{StatusCode: apiErr.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}
	return &pkgerrs.RequestError{Operation: operation, Err: err}
}

// parseError maps a payload without the resource's identity to not-found and
// anything else to *errors.ParseError.
func (c *Client) parseError(operation string, err error, resource string, id any) error {
	var missing *internal.MissingKeyError
	if errors.As(err, &missing) || errors.Is(err, internal.ErrEmptyData) {
		return &pkgerrs.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return &pkgerrs.ParseError{Operation: operation, Err: err}
}

// writeError translates a failed mutating call. Any status other than 200 is
// forbidden and carries the server's first message unchanged.
func (c *Client) writeError(operation string, err error) error {
	var apiErr *internal.APIError
	if errors.As(err, &apiErr) {
		return &pkgerrs.ForbiddenError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	var decodeErr *internal.DecodeError
	if errors.As(err, &decodeErr) {
		return &pkgerrs.ParseError{Operation: operation, Err: decodeErr.Err}
	}
	return &pkgerrs.RequestError{Operation: operation, Err: err}
}
