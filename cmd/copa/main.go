package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/a3tai/copa-listings/internal/cli"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{Version: version, Commit: gitCommit, BuildTime: buildTime}
	if err := cli.Execute(ctx, info, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
