package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	roblox "github.com/jamesprial/go-roblox-api-wrapper"
	pkgerrs "github.com/jamesprial/go-roblox-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

type command struct {
	name    string
	usage   string
	summary string
	args    int
	run     func(ctx context.Context, c *cmdContext) error
}

// cmdContext is what every command receives.
type cmdContext struct {
	client *roblox.Client
	env    settings
	opts   options
	out    *printer
	args   []string
}

var commands = []command{
	{name: "user", usage: "user <id>", summary: "show a user", args: 1, run: runUser},
	{name: "friends", usage: "friends <id>", summary: "list a user's friends", args: 1, run: runFriends},
	{name: "history", usage: "history <id>", summary: "list a user's past usernames", args: 1, run: runHistory},
	{name: "game", usage: "game <universe-id>", summary: "show a game", args: 1, run: runGame},
	{name: "group", usage: "group <id>", summary: "show a group", args: 1, run: runGroup},
	{name: "wall", usage: "wall <group-id>", summary: "list the newest wall posts", args: 1, run: runWall},
	{name: "search", usage: "search <keyword>", summary: "search users by keyword", args: 1, run: runSearch},
	{name: "login", usage: "login", summary: "log in and stay connected until interrupted", args: 0, run: runLogin},
	{name: "message", usage: "message <user-id> <body>", summary: "send a private message", args: 2, run: runMessage},
	{name: "post", usage: "post <group-id> <message>", summary: "post on a group wall", args: 2, run: runPost},
}

func execute(ctx context.Context, client *roblox.Client, env settings, opts options, out *printer, name string, args []string) error {
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if len(args) != cmd.args {
			return fmt.Errorf("usage: robloxctl %s", cmd.usage)
		}
		return cmd.run(ctx, &cmdContext{client: client, env: env, opts: opts, out: out, args: args})
	}
	return fmt.Errorf("unknown command %q", name)
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return id, nil
}

func runUser(ctx context.Context, c *cmdContext) error {
	id, err := parseID("user id", c.args[0])
	if err != nil {
		return err
	}
	user, err := c.client.FetchUser(ctx, id)
	if err != nil {
		return err
	}
	return c.out.print(user.UserData, func(w io.Writer) {
		fmt.Fprintln(w, user)
	})
}

func runFriends(ctx context.Context, c *cmdContext) error {
	id, err := parseID("user id", c.args[0])
	if err != nil {
		return err
	}
	user, err := c.client.FetchUser(ctx, id)
	if err != nil {
		return err
	}
	friends, err := user.Friends(ctx)
	if err != nil {
		return err
	}

	records := make([]types.UserData, 0, len(friends))
	for _, f := range friends {
		records = append(records, f.UserData)
	}
	return c.out.print(records, func(w io.Writer) {
		for _, f := range friends {
			fmt.Fprintf(w, "%d\t%s\n", f.ID, f.Username)
		}
	})
}

func runHistory(ctx context.Context, c *cmdContext) error {
	id, err := parseID("user id", c.args[0])
	if err != nil {
		return err
	}
	user, err := c.client.FetchUser(ctx, id)
	if err != nil {
		return err
	}
	names, err := user.UsernameHistory(ctx)
	if err != nil {
		return err
	}
	return c.out.print(names, func(w io.Writer) {
		fmt.Fprintln(w, strings.Join(names, "\n"))
	})
}

func runGame(ctx context.Context, c *cmdContext) error {
	id, err := parseID("universe id", c.args[0])
	if err != nil {
		return err
	}
	game, err := c.client.FetchGame(ctx, id)
	if err != nil {
		return err
	}
	return c.out.print(game, func(w io.Writer) {
		fmt.Fprintln(w, game)
	})
}

func runGroup(ctx context.Context, c *cmdContext) error {
	id, err := parseID("group id", c.args[0])
	if err != nil {
		return err
	}
	group, err := c.client.FetchGroup(ctx, id)
	if err != nil {
		return err
	}
	return c.out.print(group.GroupData, func(w io.Writer) {
		fmt.Fprintln(w, group)
	})
}

func runWall(ctx context.Context, c *cmdContext) error {
	id, err := parseID("group id", c.args[0])
	if err != nil {
		return err
	}
	group, err := c.client.FetchGroup(ctx, id)
	if err != nil {
		return err
	}
	posts, err := group.WallPosts(ctx, c.opts.limit)
	if err != nil {
		return err
	}
	return c.out.print(posts, func(w io.Writer) {
		for _, p := range posts {
			author := "[deleted]"
			if p.Poster != nil && p.Poster.User != nil {
				author = p.Poster.User.Username
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, author, p.Body)
		}
	})
}

func runSearch(ctx context.Context, c *cmdContext) error {
	users, err := c.client.SearchUsers(ctx, c.args[0], c.opts.limit)
	if err != nil {
		return err
	}
	records := make([]types.UserData, 0, len(users))
	for _, u := range users {
		records = append(records, u.UserData)
	}
	return c.out.print(records, func(w io.Writer) {
		for _, u := range users {
			fmt.Fprintln(w, u)
		}
	})
}

func runLogin(ctx context.Context, c *cmdContext) error {
	if err := c.client.OnReady(func(self *roblox.User) {
		fmt.Fprintf(c.out.w, "logged in as %s (%d), press Ctrl+C to log out\n", self.Username, self.ID)
	}); err != nil {
		return err
	}

	err := c.client.Login(ctx, c.env.cookie)
	if errors.Is(err, pkgerrs.ErrLogout) {
		fmt.Fprintln(c.out.w, err)
		return nil
	}
	return err
}

func runMessage(ctx context.Context, c *cmdContext) error {
	id, err := parseID("user id", c.args[0])
	if err != nil {
		return err
	}
	if err := c.client.Connect(ctx, c.env.cookie); err != nil {
		return err
	}
	recipient, err := c.client.FetchUser(ctx, id)
	if err != nil {
		return err
	}

	var msgOpts []roblox.MessageOption
	if c.opts.replyTo > 0 {
		msgOpts = append(msgOpts, roblox.WithReplyTo(c.opts.replyTo), roblox.WithPreviousMessage())
	}
	result, err := recipient.Send(ctx, c.opts.subject, c.args[1], msgOpts...)
	if err != nil {
		return err
	}
	return c.out.print(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Message)
	})
}

func runPost(ctx context.Context, c *cmdContext) error {
	id, err := parseID("group id", c.args[0])
	if err != nil {
		return err
	}
	if err := c.client.Connect(ctx, c.env.cookie); err != nil {
		return err
	}
	group, err := c.client.FetchGroup(ctx, id)
	if err != nil {
		return err
	}
	post, err := group.Send(ctx, c.args[1])
	if err != nil {
		return err
	}
	return c.out.print(post, func(w io.Writer) {
		fmt.Fprintf(w, "posted %d on %s\n", post.ID, group.Name)
	})
}
