// Package main provides a CLI for running Lua scenario scripts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	scenariocmd "github.com/louisbranch/creaturebattle/internal/cmd/scenario"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
	"github.com/louisbranch/creaturebattle/internal/platform/config"
)

func main() {
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(config.Usage(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RunWithTelemetry(ctx, cmd.ServiceScenario, func(ctx context.Context) error {
		return scenariocmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		config.Exit(err)
	}
}
