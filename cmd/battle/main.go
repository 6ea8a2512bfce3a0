// Package main simulates an auto-played battle from catalog data.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	battlecmd "github.com/louisbranch/creaturebattle/internal/cmd/battle"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
	"github.com/louisbranch/creaturebattle/internal/platform/config"
)

func main() {
	cfg, err := battlecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(config.Usage(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RunWithTelemetry(ctx, cmd.ServiceBattle, func(ctx context.Context) error {
		return battlecmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		config.Exit(err)
	}
}
