package roblox

import (
	"context"
	"errors"

	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// Connect logs in with the .ROBLOSECURITY cookie and returns once the session
// is ready. The ready handler runs on the calling goroutine before Connect
// returns. On rejection the client-error handler receives the same
// *errors.LoginError that Connect returns.
//
// A client holds one session; a second Connect or Login returns
// *errors.StateError.
func (c *Client) Connect(ctx context.Context, securityCookie string) error {
	if err := c.validator.ValidateSecurityCookie(securityCookie); err != nil {
		return err
	}
	if err := c.validator.ValidateCredentials(c.config.Email, c.config.Username, c.config.Password); err != nil {
		return err
	}
	if !c.session.Begin() {
		return &pkgerrs.StateError{Operation: "Login", Message: "session already started"}
	}

	c.logger.Info("logging in", "username", c.config.Username)

	token, err := c.auth.Login(ctx, securityCookie)
	if err != nil {
		if ctx.Err() != nil {
			c.session.Set(types.StateTerminated)
			return &pkgerrs.LogoutError{Cause: ctx.Err()}
		}
		loginErr := toLoginError(err)
		c.session.Set(types.StateFailed)
		c.logger.Warn("login failed", "status", loginErr.StatusCode, "error", loginErr.Message)
		c.events.fireClientError(loginErr)
		return loginErr
	}

	c.client.SetSession(securityCookie, token)
	c.session.Set(types.StateReady)
	c.logger.Info("session ready", "user_id", c.self.ID)
	c.events.fireReady(c.self)
	return nil
}

// Login connects and then keeps the session open until ctx is done. It always
// returns a non-nil error: the login failure, or *errors.LogoutError once the
// session is shut down. Use errors.Is(err, errors.ErrLogout) to tell a clean
// shutdown from a failure.
func (c *Client) Login(ctx context.Context, securityCookie string) error {
	if err := c.Connect(ctx, securityCookie); err != nil {
		return err
	}

	<-ctx.Done()
	c.client.CloseIdleConnections()
	c.session.Set(types.StateTerminated)
	c.logger.Info("session terminated", "cause", ctx.Err())
	return &pkgerrs.LogoutError{Cause: ctx.Err()}
}

// Ready is closed once the login session first becomes ready.
func (c *Client) Ready() <-chan struct{} {
	return c.session.Ready()
}

func toLoginError(err error) *pkgerrs.LoginError {
	var authErr *internal.AuthError
	if errors.As(err, &authErr) {
		return &pkgerrs.LoginError{
			StatusCode: authErr.StatusCode,
			Message:    authErr.Message,
			Err:        authErr.Err,
		}
	}
	return &pkgerrs.LoginError{Err: err}
}
