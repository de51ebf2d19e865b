package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/catalog/internal/cli"
	"github.com/abgdnv/catalog/pkg/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := cli.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// logs go to stderr so they never mix with json output
	logger := bootstrap.NewLogger(os.Stderr, cfg.Log.Level)

	app := cli.NewApp(cfg, os.Stdin, logger)
	return cli.NewRootCommand(app).ExecuteContext(ctx)
}
