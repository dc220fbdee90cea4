// Package main is the entry point for the quotectl command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/quote-manager/internal/adapters/cli"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := cli.NewRootCmd(open)
	root.Version = Version

	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// open builds a container from the profile config. Logs go to stderr so
// command output on stdout stays machine-readable.
func open(ctx context.Context, profile string) (*bootstrap.Container, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "quotectl",
		Version: Version,
	}, os.Stderr)

	return bootstrap.New(ctx, bootstrap.Options{Config: cfg, Logger: logger})
}
