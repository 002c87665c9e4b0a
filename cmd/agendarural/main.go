package main

import (
	"context"
	"fmt"
	"os"

	"agenda-rural/internal/app"
	"agenda-rural/internal/cli"
	"agenda-rural/internal/config"
	"agenda-rural/internal/logger"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	root := cli.NewRootCommand(openContainer, version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New("agenda-rural", cfg.LogLevel, os.Stderr)
	return app.New(ctx, cfg, log)
}
