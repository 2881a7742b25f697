package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scrollr/scrollr/internal/client/cli"
	"github.com/scrollr/scrollr/internal/config"
	"github.com/scrollr/scrollr/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "scrollr:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(os.Stdin, os.Stdout, logging.New(os.Stderr, "text", cfg.LogLevel))
	app.APIURL = cfg.APIURL
	app.SessionPath = cfg.SessionPath
	return app.Execute(ctx, os.Args[1:])
}
