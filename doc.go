// Package roblox provides a Go wrapper for the Roblox public web API.
//
// # Overview
//
// The package exposes Roblox users, games and groups as Go values and adds a
// cookie-authenticated session for the two write operations Roblox allows a
// web client: private messages and group wall posts. All traffic is JSON over
// HTTPS against the Roblox web hosts (api, games, users, groups,
// privatemessages, auth and www).
//
// # Quick Start
//
// A client is bound to an account. NewClient resolves that account from the
// configured username before returning:
//
//	client, err := roblox.NewClient(ctx, &roblox.Config{
//		Email:    "bot@example.com",
//		Username: "ArticBot",
//		Password: os.Getenv("ROBLOX_PASSWORD"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Reading Resources
//
//	user, err := client.FetchUser(ctx, 1)
//	game, err := client.FetchGame(ctx, 13058)
//	group, err := client.FetchGroup(ctx, 1)
//	users, err := client.SearchUsers(ctx, "builderman", 10)
//
// User and Group carry the record Roblox returned plus methods that perform
// one fresh request each, such as User.Friends, User.Profile or
// Group.WallPosts. Nothing is cached.
//
// Listing limits are restricted to 10, 25, 50 and 100. Other values fail with
// *errors.ValidationError before any request is made. Only the first page of
// a listing is returned.
//
// # Sessions
//
// Register handlers, then log in with the .ROBLOSECURITY cookie:
//
//	client.OnReady(func(self *roblox.User) {
//		fmt.Println("ready as", self.Username)
//	})
//	client.OnClientError(func(err error) {
//		log.Println("login failed:", err)
//	})
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err := client.Login(ctx, cookie)
//	if errors.Is(err, pkgerrs.ErrLogout) {
//		// clean shutdown
//	}
//
// Login blocks until ctx is done. Connect performs the same login and returns
// as soon as the session is ready. The ready handler runs exactly once, on the
// goroutine that called Login or Connect. Handlers must be synchronous: a
// function that takes a context.Context or returns a channel is rejected with
// errors.ErrAsyncHandler.
//
// Once ready, User.Send and Group.Send are authenticated with the session
// cookie and the CSRF token obtained during login.
//
// # Error Handling
//
// Errors are typed and live in pkg/errors:
//
//   - *errors.NotFoundError, matched by errors.ErrUserNotFound,
//     errors.ErrGameNotFound or errors.ErrGroupNotFound
//   - *errors.LoginError when Roblox rejects the login
//   - *errors.ForbiddenError when a message or wall post is refused; its
//     Error() is the server's message unchanged
//   - *errors.ListenerError for rejected handler registrations
//   - *errors.LogoutError when a session shuts down
//   - *errors.APIError for other non-success responses
//
// # Rate Limiting
//
// Requests pass through a client-side token bucket (60 requests per minute
// with a burst of 10 by default, see Config.RateLimit). A Retry-After header
// delays subsequent requests. Failed requests are not retried.
//
// # Logging
//
// Config.Logger accepts a *slog.Logger. Requests are logged at Debug, session
// transitions at Info, and calls to unstable or deprecated operations at Warn.
package roblox
