package roblox

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// User is a Roblox account. The embedded record is the snapshot taken when the
// user was fetched; every method below performs a fresh request and nothing
// is cached.
type User struct {
	types.UserData

	client *Client
}

func (u *User) String() string {
	return u.UserData.String()
}

func (u *User) idPath(prefix, suffix string) string {
	return prefix + strconv.FormatInt(u.ID, 10) + suffix
}

// Friends returns the user's friends.
func (u *User) Friends(ctx context.Context) ([]*User, error) {
	body, err := u.client.get(ctx, internal.HostAPI, u.idPath("users/", "/friends"), nil)
	if err != nil {
		return nil, u.client.readError("Friends", err, pkgerrs.ResourceUser, u.ID)
	}

	records, err := u.client.parser.ParseUsers(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "Friends", Err: err}
	}

	friends := make([]*User, 0, len(records))
	for _, record := range records {
		friends = append(friends, &User{UserData: *record, client: u.client})
	}
	return friends, nil
}

// Games returns the games the user created.
func (u *User) Games(ctx context.Context) ([]types.GameSummary, error) {
	return u.gameList(ctx, "Games", u.idPath("v2/users/", "/games"))
}

// FavoriteGames returns the games the user marked as favorite.
func (u *User) FavoriteGames(ctx context.Context) ([]types.GameSummary, error) {
	return u.gameList(ctx, "FavoriteGames", u.idPath("v2/users/", "/favorite/games"))
}

func (u *User) gameList(ctx context.Context, operation, path string) ([]types.GameSummary, error) {
	body, err := u.client.get(ctx, internal.HostGames, path, nil)
	if err != nil {
		return nil, u.client.readError(operation, err, pkgerrs.ResourceUser, u.ID)
	}
	games, err := u.client.parser.ParseGameSummaries(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: operation, Err: err}
	}
	return games, nil
}

// Profile returns the user's profile record from the users host.
func (u *User) Profile(ctx context.Context) (*types.UserProfile, error) {
	body, err := u.client.get(ctx, internal.HostUsers, u.idPath("v1/users/", ""), nil)
	if err != nil {
		return nil, u.client.readError("Profile", err, pkgerrs.ResourceUser, u.ID)
	}
	profile, err := u.client.parser.ParseProfile(body)
	if err != nil {
		return nil, u.client.parseError("Profile", err, pkgerrs.ResourceUser, u.ID)
	}
	return profile, nil
}

// Description returns the profile description.
func (u *User) Description(ctx context.Context) (string, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return "", err
	}
	return p.Description, nil
}

// Created returns the account creation timestamp as sent by Roblox.
func (u *User) Created(ctx context.Context) (string, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return "", err
	}
	return p.Created, nil
}

// IsBanned reports whether Roblox has banned the account.
func (u *User) IsBanned(ctx context.Context) (bool, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return false, err
	}
	return p.IsBanned, nil
}

// ExternalAppDisplayName returns the name shown for the user in external apps.
func (u *User) ExternalAppDisplayName(ctx context.Context) (string, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return "", err
	}
	return p.ExternalAppDisplayName, nil
}

// HasVerifiedBadge reports whether the user carries the verified badge.
func (u *User) HasVerifiedBadge(ctx context.Context) (bool, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return false, err
	}
	return p.HasVerifiedBadge, nil
}

// DisplayName returns the user's display name, which may differ from Username.
func (u *User) DisplayName(ctx context.Context) (string, error) {
	p, err := u.Profile(ctx)
	if err != nil {
		return "", err
	}
	return p.DisplayName, nil
}

// UsernameHistory returns the user's previous usernames in the order Roblox
// lists them.
func (u *User) UsernameHistory(ctx context.Context) ([]string, error) {
	body, err := u.client.get(ctx, internal.HostUsers, u.idPath("v1/users/", "/username-history"), nil)
	if err != nil {
		return nil, u.client.readError("UsernameHistory", err, pkgerrs.ResourceUser, u.ID)
	}
	names, err := u.client.parser.ParseUsernameHistory(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "UsernameHistory", Err: err}
	}
	return names, nil
}

// MessageOption customizes a direct message.
type MessageOption func(*types.MessageRequest)

// WithReplyTo marks the message as a reply to an earlier message.
func WithReplyTo(messageID int64) MessageOption {
	return func(r *types.MessageRequest) {
		r.ReplyMessageID = &messageID
	}
}

// WithPreviousMessage quotes the replied-to message in the body.
func WithPreviousMessage() MessageOption {
	return func(r *types.MessageRequest) {
		r.IncludePreviousMessage = true
	}
}

// Send delivers a private message to u from the client's own account. The
// session must be logged in. Roblox refusing the message is reported as
// *errors.ForbiddenError carrying its message unchanged.
func (u *User) Send(ctx context.Context, subject, body string, opts ...MessageOption) (*types.MessageResult, error) {
	c := u.client
	internal.WarnUnstable(ctx, c.logger, "User.Send", "private message endpoint may change without notice")

	payload := &types.MessageRequest{
		UserID:      c.self.ID,
		Subject:     subject,
		Body:        body,
		RecipientID: u.ID,
	}
	for _, opt := range opts {
		opt(payload)
	}

	req, err := c.client.NewJSONRequest(ctx, internal.HostPrivateMessages, http.MethodPost, "v1/messages/send", payload)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "User.Send", Err: err}
	}
	var result types.MessageResult
	if err := c.client.Do(req, &result); err != nil {
		return nil, c.writeError("User.Send", err)
	}
	return &result, nil
}
