// Command tol is a small query utility for the TOL API, configured entirely
// from the environment. It is mainly useful for poking at an API during
// development:
//
//	tol index books author=asimov
//	tol get books 123
//	tol send DELETE books/123
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	tolapi "github.com/hthiyaga/tol-api"
)

func main() {
	configureLogging()

	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: tol index <resource> [filter=value...] | tol get <resource> <id> | tol send <method> <path>")
	}

	ctx := context.Background()

	cfg, err := tolapi.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	client, err := cfg.Client(tolapi.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("client configuration failed: %w", err)
	}

	var resp *tolapi.Response
	switch args[0] {
	case "index":
		resp, err = client.Index(ctx, args[1], parseFilters(args[2:]))
	case "get":
		if len(args) < 3 {
			return fmt.Errorf("usage: tol get <resource> <id>")
		}
		resp, err = client.Get(ctx, args[1], args[2], nil)
	case "send":
		if len(args) < 3 {
			return fmt.Errorf("usage: tol send <method> <path>")
		}
		resp, err = client.Send(ctx, args[1], args[2], nil, nil)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		return err
	}

	log.Info().Int("status", resp.StatusCode).Msg("request complete")
	fmt.Println(string(resp.Body))

	return nil
}

func parseFilters(args []string) url.Values {
	filters := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			log.Warn().Str("filter", arg).Msg("ignoring malformed filter, expected key=value")
			continue
		}
		filters.Add(key, value)
	}
	return filters
}

func configureLogging() {
	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}
}
