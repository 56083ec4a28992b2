package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/obs"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const managerKey = "manager"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gosession",
		Usage:   "Manage a local session token profile",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			loginCommand(),
			showCommand(),
			refreshCommand(),
			logoutCommand(),
			userCommand(),
			inspectCommand(),
		},
		Before: openManager,
		After:  closeManager,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "HMAC signing secret",
			EnvVars: []string{"GOSESSION_TOKEN_SECRET"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Profile store: badger, redis, memory",
			EnvVars: []string{"GOSESSION_STORE_BACKEND"},
			Value:   string(goSession.StoreBadger),
		},
		&cli.StringFlag{
			Name:    "profile-dir",
			Aliases: []string{"p"},
			Usage:   "Badger profile directory (default: <user config dir>/gosession)",
			EnvVars: []string{"GOSESSION_STORE_BADGER_DIR"},
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for the redis backend",
			EnvVars: []string{"GOSESSION_STORE_REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn, error",
			EnvVars: []string{"GOSESSION_LOG_LEVEL"},
			Value:   "warn",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Human-readable logs",
		},
	}
}

// loadConfig overlays explicit flags on GOSESSION_* environment configuration.
func loadConfig(c *cli.Context) (goSession.Config, error) {
	cfg, err := goSession.LoadConfigFromEnv()
	if err != nil {
		return goSession.Config{}, err
	}

	if c.IsSet("secret") {
		cfg.Token.Secret = c.String("secret")
	}
	cfg.Store.Backend = goSession.StoreBackend(c.String("backend"))
	if c.IsSet("redis-addr") {
		cfg.Store.Redis.Addr = c.String("redis-addr")
	}
	if cfg.Store.Backend == goSession.StoreBadger {
		dir := c.String("profile-dir")
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return goSession.Config{}, fmt.Errorf("resolve profile dir: %w", err)
			}
			dir = filepath.Join(base, "gosession")
		}
		cfg.Store.Badger.Dir = dir
	}
	return cfg, nil
}

func openManager(c *cli.Context) error {
	if c.Args().Len() == 0 || c.Args().First() == "inspect" || c.Args().First() == "help" {
		return nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Token.Secret == "" {
		return errors.New("a signing secret is required (--secret or GOSESSION_TOKEN_SECRET)")
	}

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:   c.String("log-level"),
		Pretty:  c.Bool("pretty"),
		App:     "gosession",
		Profile: cfg.Store.Badger.Dir,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	m, err := goSession.New().
		WithConfig(cfg).
		WithLogger(logger).
		Build()
	if err != nil {
		_ = logger.Sync()
		return err
	}

	c.App.Metadata[managerKey] = m
	logger.Debug("profile opened", zap.String("backend", string(cfg.Store.Backend)))
	return nil
}

func closeManager(c *cli.Context) error {
	m, ok := c.App.Metadata[managerKey].(*goSession.Manager)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, managerKey)
	return m.Close()
}

func managerFrom(c *cli.Context) (*goSession.Manager, error) {
	m, ok := c.App.Metadata[managerKey].(*goSession.Manager)
	if !ok {
		return nil, errors.New("no session profile open")
	}
	return m, nil
}
