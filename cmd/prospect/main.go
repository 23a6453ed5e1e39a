// Command prospect serves and operates the athlete star-rating service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
