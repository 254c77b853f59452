// robloxctl is a command-line client for the Roblox web API.
//
// Credentials come from the environment, optionally loaded from a .env file:
//
//	ROBLOX_USERNAME   account the client acts as (always required)
//	ROBLOX_EMAIL      login email (login, message, post)
//	ROBLOX_PASSWORD   login password (login, message, post)
//	ROBLOSECURITY     .ROBLOSECURITY session cookie (login, message, post)
//
// Usage:
//
//	robloxctl [flags] user <id>
//	robloxctl [flags] friends <id>
//	robloxctl [flags] history <id>
//	robloxctl [flags] game <universe-id>
//	robloxctl [flags] group <id>
//	robloxctl [flags] wall <group-id>
//	robloxctl [flags] search <keyword>
//	robloxctl [flags] login
//	robloxctl [flags] message <user-id> <body>
//	robloxctl [flags] post <group-id> <message>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	roblox "github.com/jamesprial/go-roblox-api-wrapper"
)

// options holds the parsed command-line flags.
type options struct {
	output    string
	logLevel  string
	logFormat string
	envFile   string
	limit     int
	subject   string
	replyTo   int64
}

// settings holds the values read from the environment.
type settings struct {
	email    string
	username string
	password string
	cookie   string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("robloxctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: "+levelNames)
	flagSet.StringVar(&opts.logFormat, "log-format", "console", "log format: console or json")
	flagSet.StringVar(&opts.envFile, "env-file", "", "load credentials from this .env file")
	flagSet.IntVar(&opts.limit, "limit", 10, "page size for search and wall: 10, 25, 50 or 100")
	flagSet.StringVar(&opts.subject, "subject", "Message", "subject of a direct message")
	flagSet.Int64Var(&opts.replyTo, "reply-to", 0, "id of the message a direct message replies to")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(stdout, flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("missing command")
	}

	env, err := loadSettings(opts.envFile)
	if err != nil {
		return err
	}
	if env.username == "" {
		return errors.New("ROBLOX_USERNAME is not set")
	}

	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	out, err := newPrinter(stdout, opts.output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := roblox.NewClient(ctx, &roblox.Config{
		Email:    env.email,
		Username: env.username,
		Password: env.password,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	return execute(ctx, client, env, opts, out, rest[0], rest[1:])
}

// loadSettings reads credentials from the environment. An explicit env file
// must exist; the default .env is optional.
func loadSettings(envFile string) (settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return settings{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	return settings{
		email:    os.Getenv("ROBLOX_EMAIL"),
		username: os.Getenv("ROBLOX_USERNAME"),
		password: os.Getenv("ROBLOX_PASSWORD"),
		cookie:   os.Getenv("ROBLOSECURITY"),
	}, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: robloxctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-28s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
