package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	codenamescmd "github.com/mikeczech/codenames/internal/cmd/codenames"
	"github.com/mikeczech/codenames/internal/platform/config"
)

func main() {
	cfg, err := codenamescmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := codenamescmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
