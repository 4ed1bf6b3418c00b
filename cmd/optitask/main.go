// Package main is the entry point for the optitask CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"optitask/internal/cli"
	"optitask/internal/commands"
)

func main() {
	// Cancel on interrupt so in-flight mutations end and serve shuts down
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.NewStore)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
