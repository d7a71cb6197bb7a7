// The main package for the arxiv-relay executable.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/arxiv-relay/arxiv-relay/cmd"
)

// main is the entry point of the application. It defers all execution to
// the Cobra CLI, with a context that cancels on SIGINT/SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.Execute(ctx)
}
