package roblox

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jamesprial/go-roblox-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// Group is a Roblox group. The embedded record is the snapshot taken when the
// group was fetched.
type Group struct {
	types.GroupData

	client *Client
}

func (g *Group) String() string {
	return g.GroupData.String()
}

// Games returns the games owned by the group.
func (g *Group) Games(ctx context.Context) ([]types.GameSummary, error) {
	path := "v2/groups/" + strconv.FormatInt(g.ID, 10) + "/games"
	body, err := g.client.get(ctx, internal.HostGames, path, nil)
	if err != nil {
		return nil, g.client.readError("Group.Games", err, pkgerrs.ResourceGroup, g.ID)
	}
	games, err := g.client.parser.ParseGameSummaries(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "Group.Games", Err: err}
	}
	return games, nil
}

// WallPosts returns the newest posts on the group wall. limit must be 10, 25,
// 50 or 100; only the first page is read.
func (g *Group) WallPosts(ctx context.Context, limit int) ([]types.WallPost, error) {
	if err := g.client.validator.ValidateLimit(limit); err != nil {
		return nil, err
	}

	params := url.Values{
		"sortOrder": {"Desc"},
		"limit":     {strconv.Itoa(limit)},
	}
	path := "v2/groups/" + strconv.FormatInt(g.ID, 10) + "/wall/posts"
	body, err := g.client.get(ctx, internal.HostGroups, path, params)
	if err != nil {
		return nil, g.client.readError("WallPosts", err, pkgerrs.ResourceGroup, g.ID)
	}
	posts, err := g.client.parser.ParseWallPosts(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "WallPosts", Err: err}
	}
	return posts, nil
}

// Roles returns every group the given user belongs to with the role held in
// each.
func (g *Group) Roles(ctx context.Context, userID int64) ([]types.GroupRole, error) {
	if err := g.client.validator.ValidateID("userID", userID); err != nil {
		return nil, err
	}

	path := "v2/users/" + strconv.FormatInt(userID, 10) + "/groups/roles"
	body, err := g.client.get(ctx, internal.HostGroups, path, nil)
	if err != nil {
		return nil, g.client.readError("Roles", err, pkgerrs.ResourceUser, userID)
	}
	roles, err := g.client.parser.ParseGroupRoles(body)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "Roles", Err: err}
	}
	return roles, nil
}

// Send posts message on the group wall. The session must be logged in.
// Placeholder captcha values are sent; a wall that demands a solved captcha
// answers with *errors.ForbiddenError.
func (g *Group) Send(ctx context.Context, message string) (*types.WallPostResult, error) {
	c := g.client
	payload := &types.WallPostRequest{
		Body:            message,
		CaptchaID:       "",
		CaptchaToken:    internal.CaptchaToken,
		CaptchaProvider: internal.CaptchaProvider,
	}

	path := "v2/groups/" + strconv.FormatInt(g.ID, 10) + "/wall/posts"
	req, err := c.client.NewJSONRequest(ctx, internal.HostGroups, http.MethodPost, path, payload)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "Group.Send", Err: err}
	}
	var post types.WallPostResult
	if err := c.client.Do(req, &post); err != nil {
		return nil, c.writeError("Group.Send", err)
	}
	return &post, nil
}
