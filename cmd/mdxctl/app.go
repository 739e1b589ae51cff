package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict/registry"
	"github.com/sagerenn/mdxlookup/internal/observability"
)

const (
	// ExitCodeSuccess is the successful exit code.
	ExitCodeSuccess int = iota

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError

	// ExitCodeIndexFailed is the exit code when at least one dictionary
	// could not be indexed.
	ExitCodeIndexFailed
)

// ErrMdxctl is a parent error for all command errors.
var ErrMdxctl = errors.New("mdxctl")

// ErrIndexFailed is returned by the index command when a store was not built.
var ErrIndexFailed = fmt.Errorf("%w: indexing failed", ErrMdxctl)

// ErrUsage is a command line usage error.
var ErrUsage = fmt.Errorf("%w: usage", ErrMdxctl)

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "mdxctl",
		Usage:     "Index and query dictionaries offline.",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				Value:   "./configs/mdxlookup.yaml",
				EnvVars: []string{"MDX_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log `LEVEL` (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			indexCommand,
			queryCommand,
			listCommand,
		},
	}
}

// env is what every command needs after the global flags are parsed.
type env struct {
	cfg config.Config
	log *observability.Logger
}

func loadEnv(c *cli.Context) (env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return env{}, err
	}
	level := cfg.Log.Level
	if c.IsSet("log-level") || level == "" {
		level = c.String("log-level")
	}
	return env{cfg: cfg, log: observability.NewText(c.App.ErrWriter, level)}, nil
}

func openRegistry(e env) (*registry.Registry, error) {
	return registry.Open(e.cfg, e.log)
}
