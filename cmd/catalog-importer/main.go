// Package main imports a JSON creature catalog into sqlite.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/creaturebattle/internal/cmd/catalogimporter"
	"github.com/louisbranch/creaturebattle/internal/platform/cmd"
	"github.com/louisbranch/creaturebattle/internal/platform/config"
)

func main() {
	cfg, err := catalogimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(config.Usage(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RunWithTelemetry(ctx, cmd.ServiceCatalogImporter, func(ctx context.Context) error {
		return catalogimporter.Run(ctx, cfg, os.Stdout)
	}); err != nil {
		config.Exit(err)
	}
}
