// Command bookcli is the terminal client of the book catalog.
//
//	bookcli [-server URL] [-session FILE] <command> [args]
//
// Commands: signup, login, logout, whoami, list [-page N], search <query>,
// add, show <id>, edit <id>, delete <id>. Only signup and login are
// available before logging in.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"golang.org/x/term"

	"github.com/patric-chuzhbe/bookcatalog/internal/client"
)

type config struct {
	ServerURL   string        `env:"BOOKCATALOG_URL" envDefault:"http://localhost:4000"`
	SessionPath string        `env:"BOOKCATALOG_SESSION"`
	Timeout     time.Duration `env:"BOOKCATALOG_TIMEOUT" envDefault:"10s"`
}

func loadConfig(args []string) (*config, []string, error) {
	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, nil, err
	}

	fs := flag.NewFlagSet("bookcli", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "book catalog server URL")
	fs.StringVar(&cfg.SessionPath, "session", cfg.SessionPath, "session file")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if cfg.SessionPath == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return nil, nil, err
		}
		cfg.SessionPath = path
	}

	return cfg, fs.Args(), nil
}

func run(ctx context.Context, args []string) error {
	cfg, rest, err := loadConfig(args)
	if err != nil {
		return err
	}

	app, err := newCLI(
		client.NewSessionStore(cfg.SessionPath),
		func(token string) bookAPI {
			return client.New(cfg.ServerURL, client.WithTimeout(cfg.Timeout), client.WithToken(token))
		},
		bufio.NewReader(os.Stdin),
		os.Stdout,
	)
	if err != nil {
		return err
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		app.readPassword = func() ([]byte, error) { return term.ReadPassword(fd) }
	}

	return app.run(ctx, rest)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fail(err)
	}
}
